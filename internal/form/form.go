// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package form holds the editable dashboard state between commands.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/sprintboard/internal/fileio"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// DefaultFile is the form state file used when none is configured.
const DefaultFile = "sprint_form.yaml"

// State is the current sprint configuration and category metrics.
type State struct {
	sprint.Config `yaml:",inline"`
	Categories    metrics.CategorySet `yaml:"categories"`
}

// Default returns the state of a fresh form.
func Default() State {
	return State{Config: sprint.Default(), Categories: metrics.DefaultCategories()}
}

// Load reads the state at path. A missing file yields Default.
// The current sprint is normalized against the increment; an increment
// below 1 is an error.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("reading form %s: %w", path, err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing form %s: %w", path, err)
	}
	if st.Categories == nil {
		st.Categories = metrics.DefaultCategories()
	}
	if err := st.Config.Validate(); err != nil {
		return State{}, fmt.Errorf("form %s: %w", path, err)
	}
	st.Config = st.Config.Normalize()
	return st, nil
}

// Save writes the state to path atomically.
func (s State) Save(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding form: %w", err)
	}
	return fileio.WriteAtomic(path, buf.Bytes(), 0o644)
}

// ApplySnapshot loads a saved configuration and metric values into the form.
// Values for categories the form does not have are ignored.
func (s State) ApplySnapshot(cfg sprint.Config, values map[string]metrics.Record) State {
	s.Config = cfg.Normalize()
	s.Categories = s.Categories.Apply(values)
	return s
}

// SetIncrement changes the increment and resets an out-of-range current sprint.
func (s State) SetIncrement(n int) (State, error) {
	cfg, err := s.Config.WithIncrement(n)
	if err != nil {
		return s, err
	}
	s.Config = cfg
	return s, nil
}

// SetMetric replaces one category's record.
func (s State) SetMetric(key string, rec metrics.Record) (State, error) {
	set, err := s.Categories.SetRecord(key, rec)
	if err != nil {
		return s, err
	}
	s.Categories = set
	return s, nil
}
