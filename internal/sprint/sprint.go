// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package sprint models the increment/sprint selection shown on a dashboard.
package sprint

import (
	"errors"
	"fmt"
	"strconv"
)

// SprintsPerIncrement is the number of sprints in every increment.
const SprintsPerIncrement = 6

// Default configuration values.
const (
	DefaultIncrement   = 17
	DefaultSprintRange = "17.1 - 17.1"
)

var (
	// ErrUnknownSprint is returned when a sprint label is not part of the increment.
	ErrUnknownSprint = errors.New("sprint is not part of the increment")
	// ErrInvalidIncrement is returned for an increment below 1.
	ErrInvalidIncrement = errors.New("increment must be a positive integer")
)

// Config is the increment and sprint selection for one dashboard.
type Config struct {
	Increment     int    `json:"increment" yaml:"increment"`
	CurrentSprint string `json:"current_sprint" yaml:"current_sprint"`
	SprintRange   string `json:"sprint_range" yaml:"sprint_range"`
}

// Default returns the configuration a fresh form starts with.
func Default() Config {
	return Config{
		Increment:     DefaultIncrement,
		CurrentSprint: Label(DefaultIncrement, 1),
		SprintRange:   DefaultSprintRange,
	}
}

// Label formats the n-th sprint of an increment, e.g. Label(17, 2) == "17.2".
func Label(increment, n int) string {
	return strconv.Itoa(increment) + "." + strconv.Itoa(n)
}

// Labels returns the sprint labels of an increment in ascending order.
// The result always has SprintsPerIncrement entries starting at ".1".
func Labels(increment int) []string {
	labels := make([]string, SprintsPerIncrement)
	for i := range labels {
		labels[i] = Label(increment, i+1)
	}
	return labels
}

// Contains reports whether label is one of the increment's sprints.
func Contains(increment int, label string) bool {
	for _, l := range Labels(increment) {
		if l == label {
			return true
		}
	}
	return false
}

// CheckIncrement returns ErrInvalidIncrement unless n >= 1.
func CheckIncrement(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidIncrement, n)
	}
	return nil
}

// Validate checks that c's increment is usable.
func (c Config) Validate() error {
	return CheckIncrement(c.Increment)
}

// Labels returns the sprint labels of c's increment.
func (c Config) Labels() []string {
	return Labels(c.Increment)
}

// Valid reports whether CurrentSprint belongs to Increment.
func (c Config) Valid() bool {
	return Contains(c.Increment, c.CurrentSprint)
}

// Normalize resets CurrentSprint to the first sprint of the increment when
// it is not one of the increment's labels.
func (c Config) Normalize() Config {
	if !c.Valid() {
		c.CurrentSprint = Label(c.Increment, 1)
	}
	return c
}

// WithIncrement changes the increment, keeping the current sprint only when
// it is still one of the new increment's labels.
func (c Config) WithIncrement(increment int) (Config, error) {
	if err := CheckIncrement(increment); err != nil {
		return c, err
	}
	c.Increment = increment
	return c.Normalize(), nil
}

// WithCurrentSprint selects a sprint of the current increment.
func (c Config) WithCurrentSprint(label string) (Config, error) {
	if !Contains(c.Increment, label) {
		return c, fmt.Errorf("%w: %q not in %v", ErrUnknownSprint, label, c.Labels())
	}
	c.CurrentSprint = label
	return c, nil
}

// WithSprintRange sets the free-text range label shown in the subtitle.
func (c Config) WithSprintRange(r string) Config {
	c.SprintRange = r
	return c
}
