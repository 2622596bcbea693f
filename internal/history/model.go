// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package history

import (
	"fmt"
	"time"

	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// timestampLayouts are tried in order when parsing a record timestamp.
// The zone-less layouts cover files written by the desktop tool.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Record is one saved snapshot of the form.
// Matches one element of the history file's JSON array.
type Record struct {
	sprint.Config
	Metrics   map[string]metrics.Record `json:"metrics"`
	Timestamp string                    `json:"timestamp"`
}

// NewRecord snapshots cfg and the metric values of set at now.
func NewRecord(cfg sprint.Config, set metrics.CategorySet, now time.Time) Record {
	return Record{
		Config:    cfg,
		Metrics:   set.Values(),
		Timestamp: now.Format(time.RFC3339Nano),
	}
}

// Time parses the record timestamp.
func (r Record) Time() (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, r.Timestamp, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", r.Timestamp)
}

// Title is the one-line description used in listings.
func (r Record) Title() string {
	return fmt.Sprintf("Increment %d - Sprint %s", r.Increment, r.CurrentSprint)
}
