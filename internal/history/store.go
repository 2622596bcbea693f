// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package history persists saved dashboard snapshots as a single JSON array,
// most recent first.
package history

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/bartekus/sprintboard/internal/fileio"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// DefaultFile is the history file name used when none is configured.
const DefaultFile = "sprint_history.json"

// ErrIndexOutOfRange is returned for an index outside the stored records.
var ErrIndexOutOfRange = errors.New("history index out of range")

//go:embed history.schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Store holds the history in memory and rewrites the whole file on every change.
// It assumes a single writer; concurrent writers to the same file race and the
// last one wins.
type Store struct {
	path    string
	log     *zap.SugaredLogger
	records []Record
}

// Open creates a store for path and loads its current content.
func Open(path string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Store{path: path, log: log}
	s.Load()
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load re-reads the file and replaces the in-memory records.
// A missing, unreadable, malformed or schema-invalid file yields an empty history.
func (s *Store) Load() []Record {
	s.records = s.read()
	return s.Records()
}

func (s *Store) read() []Record {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []Record{}
	}
	if err != nil {
		s.log.Warnw("history unreadable, starting empty", "path", s.path, "error", err)
		return []Record{}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		s.log.Warnw("history is not valid JSON, starting empty", "path", s.path, "error", err)
		return []Record{}
	}
	if !result.Valid() {
		s.log.Warnw("history does not match schema, starting empty",
			"path", s.path, "errors", schemaErrors(result.Errors()))
		return []Record{}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.log.Warnw("history could not be decoded, starting empty", "path", s.path, "error", err)
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}
	s.log.Debugw("history loaded", "path", s.path, "records", len(records))
	return records
}

func schemaErrors(errs []gojsonschema.ResultError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.String()
	}
	return out
}

// Records returns a copy of the records, most recent first.
func (s *Store) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }

// Get returns the record at index i.
func (s *Store) Get(i int) (Record, error) {
	if err := s.checkIndex(i); err != nil {
		return Record{}, err
	}
	return s.records[i], nil
}

// Append inserts rec as the most recent record and persists the history.
func (s *Store) Append(rec Record) error {
	if rec.Metrics == nil {
		rec.Metrics = map[string]metrics.Record{}
	}

	next := make([]Record, 0, len(s.records)+1)
	next = append(next, rec)
	next = append(next, s.records...)

	if err := s.persist(next); err != nil {
		return err
	}
	s.records = next
	s.log.Infow("history record saved", "increment", rec.Increment, "sprint", rec.CurrentSprint)
	return nil
}

// Delete removes the record at index i and persists the history.
// Relative order of the remaining records is preserved.
func (s *Store) Delete(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}

	next := make([]Record, 0, len(s.records)-1)
	next = append(next, s.records[:i]...)
	next = append(next, s.records[i+1:]...)

	if err := s.persist(next); err != nil {
		return err
	}
	s.records = next
	s.log.Infow("history record deleted", "index", i)
	return nil
}

// Restore returns the stored configuration and metric values at index i unchanged.
func (s *Store) Restore(i int) (sprint.Config, map[string]metrics.Record, error) {
	rec, err := s.Get(i)
	if err != nil {
		return sprint.Config{}, nil, err
	}
	values := make(map[string]metrics.Record, len(rec.Metrics))
	for k, v := range rec.Metrics {
		values[k] = v
	}
	return rec.Config, values, nil
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.records) {
		return fmt.Errorf("%w: %d (have %d records)", ErrIndexOutOfRange, i, len(s.records))
	}
	return nil
}

func (s *Store) persist(records []Record) error {
	if err := fileio.WriteJSON(s.path, records); err != nil {
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	return nil
}
