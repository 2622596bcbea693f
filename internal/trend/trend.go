// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package trend charts saved snapshots over time.
package trend

import (
	"errors"
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/metrics"
)

// ErrNoHistory is returned when there is nothing to chart.
var ErrNoHistory = errors.New("no saved history")

const (
	chartWidth  = "100%"
	chartHeight = "420px"
	pageTitle   = "Sprint Trends"
	missing     = "-"
)

// series is one category's values across snapshots, oldest first.
type series struct {
	Name      string
	Health    []opts.LineData
	Delivered []opts.BarData
}

// Build returns a page with a health line chart and a delivered bar chart.
// records are newest first, as kept by the history store.
func Build(records []history.Record) (*components.Page, error) {
	if len(records) == 0 {
		return nil, ErrNoHistory
	}

	ordered := slices.Clone(records)
	slices.Reverse(ordered)

	labels := axisLabels(ordered)
	all := collectSeries(ordered)

	health := charts.NewLine()
	health.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Health", Subtitle: "Health score per category"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Health", Min: 0, Max: metrics.MaxHealth}),
	)
	health.SetXAxis(labels)

	delivered := charts.NewBar()
	delivered.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Features Delivered", Subtitle: "Delivered features per category"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Delivered"}),
	)
	delivered.SetXAxis(labels)

	for _, s := range all {
		health.AddSeries(s.Name, s.Health,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
		delivered.AddSeries(s.Name, s.Delivered)
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(health, delivered)
	return page, nil
}

// Render writes the trend page for records to w.
func Render(w io.Writer, records []history.Record) error {
	page, err := Build(records)
	if err != nil {
		return err
	}
	return page.Render(w)
}

// axisLabels uses each snapshot's sprint; repeated sprints get a counter.
func axisLabels(records []history.Record) []string {
	seen := map[string]int{}
	labels := make([]string, len(records))
	for i, r := range records {
		label := r.CurrentSprint
		seen[label]++
		if n := seen[label]; n > 1 {
			label += " #" + strconv.Itoa(n)
		}
		labels[i] = label
	}
	return labels
}

// collectSeries orders default categories first, then any other keys sorted.
func collectSeries(records []history.Record) []series {
	keys := metrics.DefaultCategories().Keys()
	known := map[string]bool{}
	for _, k := range keys {
		known[k] = true
	}

	var extra []string
	present := map[string]bool{}
	for _, r := range records {
		for k := range r.Metrics {
			present[k] = true
			if !known[k] && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	defaults := metrics.DefaultCategories()
	var out []series
	for _, key := range keys {
		if !present[key] {
			continue
		}
		name := key
		if c, ok := defaults.Lookup(key); ok {
			name = c.Name
		}

		s := series{
			Name:      name,
			Health:    make([]opts.LineData, len(records)),
			Delivered: make([]opts.BarData, len(records)),
		}
		for i, r := range records {
			rec, ok := r.Metrics[key]
			if !ok {
				s.Health[i] = opts.LineData{Value: missing}
				s.Delivered[i] = opts.BarData{Value: missing}
				continue
			}
			s.Health[i] = opts.LineData{Value: rec.Health}
			s.Delivered[i] = opts.BarData{Value: rec.Delivered}
		}
		out = append(out, s)
	}
	return out
}
