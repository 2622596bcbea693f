// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package sheet reads sprint metrics from an xlsx workbook.
//
// The first sheet row names the columns Category, Item, Metric and Value.
// Rows whose Category is Sprint, Increment or Current Sprint carry the sprint
// configuration in Value. Any other Category starts a card; the Item rows
// after it list the card's items and the Metric rows (Delivered, Total,
// Health) set its numbers.
package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// Column names.
const (
	ColCategory = "Category"
	ColItem     = "Item"
	ColMetric   = "Metric"
	ColValue    = "Value"
)

// Reserved Category values holding sprint configuration.
const (
	RowSprint        = "Sprint"
	RowIncrement     = "Increment"
	RowCurrentSprint = "Current Sprint"
)

// Metric names.
const (
	MetricDelivered = "Delivered"
	MetricTotal     = "Total"
	MetricHealth    = "Health"
)

var (
	ErrMissingColumn    = errors.New("missing column")
	ErrMissingIncrement = errors.New("missing increment row")
	ErrInvalidValue     = errors.New("invalid value")
	ErrDuplicateKey     = errors.New("duplicate category")
)

// Load reads sheetName (the first sheet when empty) of the workbook at path.
// An invalid Current Sprint is reset to the increment's first sprint.
func Load(path, sheetName string) (sprint.Config, metrics.CategorySet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return sprint.Config{}, nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return sprint.Config{}, nil, fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	return parse(rows)
}

type columns struct {
	category, item, metric, value int
}

func (c columns) cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func findColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var cols columns
	for _, want := range []struct {
		name string
		dst  *int
	}{
		{ColCategory, &cols.category},
		{ColItem, &cols.item},
		{ColMetric, &cols.metric},
		{ColValue, &cols.value},
	} {
		i, ok := idx[strings.ToLower(want.name)]
		if !ok {
			return columns{}, fmt.Errorf("%w: %s", ErrMissingColumn, want.name)
		}
		*want.dst = i
	}
	return cols, nil
}

func parse(rows [][]string) (sprint.Config, metrics.CategorySet, error) {
	if len(rows) == 0 {
		return sprint.Config{}, nil, fmt.Errorf("%w: %s", ErrMissingColumn, ColCategory)
	}
	cols, err := findColumns(rows[0])
	if err != nil {
		return sprint.Config{}, nil, err
	}

	var (
		cfg          sprint.Config
		haveInc      bool
		set          metrics.CategorySet
		current      *metrics.Category
		seen         = map[string]string{}
		sheetRowBase = 2 // 1-based sheet row of rows[1]
	)

	flush := func() {
		if current != nil {
			set = append(set, *current)
			current = nil
		}
	}

	for i, row := range rows[1:] {
		rowNum := sheetRowBase + i
		category := cols.cell(row, cols.category)
		item := cols.cell(row, cols.item)
		metric := cols.cell(row, cols.metric)
		value := cols.cell(row, cols.value)

		switch {
		case strings.EqualFold(category, RowSprint):
			cfg.SprintRange = value
		case strings.EqualFold(category, RowIncrement):
			n, err := parseInt(value)
			if err != nil {
				return sprint.Config{}, nil, fmt.Errorf("row %d: increment: %w", rowNum, err)
			}
			if err := sprint.CheckIncrement(n); err != nil {
				return sprint.Config{}, nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
			cfg.Increment = n
			haveInc = true
		case strings.EqualFold(category, RowCurrentSprint):
			cfg.CurrentSprint = value
		case category != "":
			flush()
			key := metrics.KeyFor(category)
			if prev, ok := seen[key]; ok {
				return sprint.Config{}, nil, fmt.Errorf("row %d: %w: %q and %q both map to key %q",
					rowNum, ErrDuplicateKey, prev, category, key)
			}
			seen[key] = category
			current = &metrics.Category{Key: key, Name: category}
		case item != "" && current != nil:
			current.Items = append(current.Items, item)
		case metric != "" && current != nil:
			if err := setMetric(&current.Record, metric, value); err != nil {
				return sprint.Config{}, nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
		}
	}
	flush()

	if !haveInc {
		return sprint.Config{}, nil, ErrMissingIncrement
	}
	cfg = cfg.Normalize()
	if cfg.SprintRange == "" {
		cfg.SprintRange = cfg.CurrentSprint + " - " + cfg.CurrentSprint
	}
	return cfg, set, nil
}

func setMetric(rec *metrics.Record, metric, value string) error {
	switch {
	case strings.EqualFold(metric, MetricDelivered):
		n, err := parseInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", MetricDelivered, err)
		}
		rec.Delivered = n
	case strings.EqualFold(metric, MetricTotal):
		n, err := parseInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", MetricTotal, err)
		}
		rec.Total = n
	case strings.EqualFold(metric, MetricHealth):
		h, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
			return fmt.Errorf("%s: %w %q", MetricHealth, ErrInvalidValue, value)
		}
		rec.Health = h
	}
	return nil
}

// parseInt accepts integers and integral floats ("17", "17.0").
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w %q", ErrInvalidValue, s)
	}
	return int(f), nil
}
