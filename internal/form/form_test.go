package form

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, Default(), st)
	assert.Equal(t, "17.1", st.CurrentSprint)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultFile)

	st, err := Default().SetIncrement(18)
	require.NoError(t, err)
	cfg, err := st.Config.WithCurrentSprint("18.5")
	require.NoError(t, err)
	st.Config = cfg.WithSprintRange("18.4 - 18.5")
	st, err = st.SetMetric(metrics.KeyDigital, metrics.Record{Delivered: 11, Total: 40, Health: 3.9})
	require.NoError(t, err)

	require.NoError(t, st.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestSave_YAMLLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Default().Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "increment: 17\n")
	assert.Contains(t, text, `current_sprint: "17.1"`)
	assert.Contains(t, text, "categories:\n")
	assert.Contains(t, text, "key: digitalTechnology")
	assert.Contains(t, text, "delivered: 5")
}

func TestLoad_NormalizesCurrentSprint(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("increment: 20\ncurrent_sprint: \"17.3\"\n"), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "20.1", st.CurrentSprint)
	assert.Equal(t, metrics.DefaultCategories(), st.Categories)
}

func TestLoad_InvalidIncrement(t *testing.T) {
	for name, content := range map[string]string{
		"zero":     "increment: 0\ncurrent_sprint: \"0.1\"\n",
		"negative": "increment: -3\ncurrent_sprint: \"-3.1\"\n",
		"missing":  "current_sprint: \"17.1\"\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			_, err := Load(path)
			require.ErrorIs(t, err, sprint.ErrInvalidIncrement)
		})
	}
}

func TestSetIncrement_RejectsNonPositive(t *testing.T) {
	st := Default()
	for _, n := range []int{0, -3} {
		got, err := st.SetIncrement(n)
		require.ErrorIs(t, err, sprint.ErrInvalidIncrement)
		assert.Equal(t, st, got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("increment: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplySnapshot(t *testing.T) {
	st := Default()
	cfg := sprint.Config{Increment: 16, CurrentSprint: "16.6", SprintRange: "16.1 - 16.6"}
	values := map[string]metrics.Record{
		metrics.KeyDigital:              {Delivered: 1, Total: 2, Health: 1.5},
		"retiredCategory":               {Delivered: 9, Total: 9, Health: 4},
		metrics.KeyTechnologyOperations: {Delivered: 4, Total: 70, Health: 3},
	}

	got := st.ApplySnapshot(cfg, values)

	assert.Equal(t, cfg, got.Config)
	assert.Len(t, got.Categories, 4)
	d, _ := got.Categories.Lookup(metrics.KeyDigital)
	assert.Equal(t, values[metrics.KeyDigital], d.Record)
	ea, _ := got.Categories.Lookup(metrics.KeyEnterpriseApplications)
	assert.Equal(t, 43, ea.Total, "categories absent from the snapshot keep their values")

	orig, _ := st.Categories.Lookup(metrics.KeyDigital)
	assert.Equal(t, 3, orig.Delivered, "the receiver is not modified")
}

func TestApplySnapshot_InvalidSprintIsReset(t *testing.T) {
	got := Default().ApplySnapshot(sprint.Config{Increment: 18, CurrentSprint: "bogus"}, nil)
	assert.Equal(t, "18.1", got.CurrentSprint)
}

func TestSetMetric_UnknownKey(t *testing.T) {
	_, err := Default().SetMetric("nope", metrics.Record{})
	require.ErrorIs(t, err, metrics.ErrUnknownCategory)
}
