package trend

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

func snapshot(label string, values map[string]metrics.Record) history.Record {
	cfg := sprint.Config{Increment: 17, CurrentSprint: label, SprintRange: label + " - " + label}
	return history.Record{Config: cfg, Metrics: values, Timestamp: time.Now().Format(time.RFC3339)}
}

func TestBuild_EmptyHistory(t *testing.T) {
	_, err := Build(nil)
	require.ErrorIs(t, err, ErrNoHistory)

	var buf bytes.Buffer
	require.ErrorIs(t, Render(&buf, []history.Record{}), ErrNoHistory)
	assert.Zero(t, buf.Len())
}

func TestRender_ContainsSeriesAndLabels(t *testing.T) {
	set := metrics.DefaultCategories()
	records := []history.Record{
		snapshot("17.2", set.Values()),
		snapshot("17.1", set.Values()),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, records))
	html := buf.String()

	assert.Contains(t, html, "Sprint Trends")
	for _, c := range set {
		assert.Contains(t, html, c.Name)
	}
	assert.Contains(t, html, "17.1")
	assert.Contains(t, html, "17.2")
	assert.Contains(t, html, "Features Delivered")
}

func TestAxisLabels_OldestFirstWithRepeats(t *testing.T) {
	records := []history.Record{snapshot("17.1", nil), snapshot("17.1", nil), snapshot("17.2", nil)}
	assert.Equal(t, []string{"17.1", "17.1 #2", "17.2"}, axisLabels(records))
}

func TestCollectSeries(t *testing.T) {
	records := []history.Record{
		snapshot("17.1", map[string]metrics.Record{
			metrics.KeyDigital: {Delivered: 1, Total: 10, Health: 3.1},
			"zeta":             {Delivered: 4, Total: 4, Health: 4},
		}),
		snapshot("17.2", map[string]metrics.Record{
			metrics.KeyDigital:           {Delivered: 2, Total: 10, Health: 3.4},
			metrics.KeyDigitalTechnology: {Delivered: 6, Total: 150, Health: 3.2},
			"alpha":                      {Delivered: 1, Total: 2, Health: 2},
		}),
	}

	got := collectSeries(records)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"DIGITAL TECHNOLOGY", "DIGITAL", "alpha", "zeta"}, names)

	digital := got[1]
	assert.Equal(t, 3.1, digital.Health[0].Value)
	assert.Equal(t, 3.4, digital.Health[1].Value)
	assert.Equal(t, 2, digital.Delivered[1].Value)

	dt := got[0]
	assert.Equal(t, missing, dt.Health[0].Value, "absent in the first snapshot")
	assert.Equal(t, 6, dt.Delivered[1].Value)
}
