package app

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// PrintState writes the sprint configuration and a table of category metrics.
func PrintState(w io.Writer, cfg sprint.Config, set metrics.CategorySet) {
	_, _ = fmt.Fprintf(w, "Increment:      %d\n", cfg.Increment)
	_, _ = fmt.Fprintf(w, "Current sprint: %s\n", cfg.CurrentSprint)
	_, _ = fmt.Fprintf(w, "Sprint range:   %s\n\n", cfg.SprintRange)

	tw := newTable(w)
	tw.AppendHeader(table.Row{"Key", "Category", "Delivered", "Total", "Health"})

	var delivered, total int
	for _, c := range set {
		tw.AppendRow(table.Row{c.Key, c.Name, c.Delivered, c.Total, c.HealthLabel()})
		delivered += c.Delivered
		total += c.Total
	}
	tw.AppendFooter(table.Row{"", "Total", delivered, total, strconv.Itoa(len(set)) + " categories"})
	tw.Render()
}

// PrintHistory lists records newest first with 1-based indices.
func PrintHistory(w io.Writer, records []history.Record, now time.Time) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "No saved history.")
		return
	}

	tw := newTable(w)
	tw.AppendHeader(table.Row{"#", "Snapshot", "Range", "Delivered", "Saved"})
	for i, r := range records {
		delivered, total := 0, 0
		for _, m := range r.Metrics {
			delivered += m.Delivered
			total += m.Total
		}
		tw.AppendRow(table.Row{i + 1, r.Title(), r.SprintRange, fmt.Sprintf("%d / %d", delivered, total), savedAt(r, now)})
	}
	tw.Render()
}

// SnapshotSet returns the categories of a saved record: default categories it
// has values for, in card order, then unknown keys sorted.
func SnapshotSet(r history.Record) metrics.CategorySet {
	var set metrics.CategorySet
	seen := map[string]bool{}
	for _, c := range metrics.DefaultCategories() {
		if rec, ok := r.Metrics[c.Key]; ok {
			c.Record = rec
			set = append(set, c)
			seen[c.Key] = true
		}
	}

	var extra []string
	for k := range r.Metrics {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		set = append(set, metrics.Category{Key: k, Name: k, Record: r.Metrics[k]})
	}
	return set
}

func savedAt(r history.Record, now time.Time) string {
	t, err := r.Time()
	if err != nil {
		return r.Timestamp
	}
	return t.Format("2006-01-02 15:04") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}
