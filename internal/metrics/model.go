// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package metrics defines the delivery categories and their metric values.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
)

// MaxHealth is the reference maximum shown under every health score.
const MaxHealth = 4.0

// ErrUnknownCategory is returned when a category key is not in the set.
var ErrUnknownCategory = errors.New("unknown category")

// Record is one category's delivery numbers.
// Delivered <= Total and Health in [0, MaxHealth] are expected but not enforced.
type Record struct {
	Delivered int     `json:"delivered" yaml:"delivered"`
	Total     int     `json:"total" yaml:"total"`
	Health    float64 `json:"health" yaml:"health"`
}

// FormatHealth renders a health score with exactly two decimals.
func FormatHealth(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

// HealthLabel returns the record's health formatted for display.
func (r Record) HealthLabel() string {
	return FormatHealth(r.Health)
}

// Category is a delivery area with the child items listed on its card.
type Category struct {
	Key    string   `yaml:"key"`
	Name   string   `yaml:"name"`
	Items  []string `yaml:"items,omitempty"`
	Record `yaml:",inline"`
}

// CategorySet is an ordered list of categories. Order is the card order.
type CategorySet []Category

// Values returns the metric records keyed by category key.
func (s CategorySet) Values() map[string]Record {
	out := make(map[string]Record, len(s))
	for _, c := range s {
		out[c.Key] = c.Record
	}
	return out
}

// Apply returns a copy of s with the records of matching keys replaced.
// Keys not present in s are ignored.
func (s CategorySet) Apply(values map[string]Record) CategorySet {
	out := s.Clone()
	for i := range out {
		if rec, ok := values[out[i].Key]; ok {
			out[i].Record = rec
		}
	}
	return out
}

// Lookup returns the category with the given key.
func (s CategorySet) Lookup(key string) (Category, bool) {
	for _, c := range s {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// SetRecord returns a copy of s with the record of key replaced.
func (s CategorySet) SetRecord(key string, rec Record) (CategorySet, error) {
	out := s.Clone()
	for i := range out {
		if out[i].Key == key {
			out[i].Record = rec
			return out, nil
		}
	}
	return s, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// Keys returns the category keys in order.
func (s CategorySet) Keys() []string {
	keys := make([]string, len(s))
	for i, c := range s {
		keys[i] = c.Key
	}
	return keys
}

// Clone deep-copies the set.
func (s CategorySet) Clone() CategorySet {
	if s == nil {
		return nil
	}
	out := make(CategorySet, len(s))
	for i, c := range s {
		c.Items = append([]string(nil), c.Items...)
		out[i] = c
	}
	return out
}
