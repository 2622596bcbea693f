package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/app"
	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
	"github.com/bartekus/sprintboard/internal/config"
	"github.com/bartekus/sprintboard/internal/export"
	"github.com/bartekus/sprintboard/internal/form"
	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sheet"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// fakeExporter stands in for headless Chrome.
type fakeExporter struct {
	err   error
	calls int
}

func (f *fakeExporter) Export(_ context.Context, _, imagePath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(imagePath, []byte("\x89PNG"), 0o644)
}

type harness struct {
	t        *testing.T
	dir      string
	cfgPath  string
	env      *app.Env
	exporter *fakeExporter
}

func newHarness(t *testing.T, extraConfig string) *harness {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sprintboard.yaml")
	content := "history:\n  file: " + filepath.Join(dir, "history.json") + "\n" +
		"form:\n  file: " + filepath.Join(dir, "form.yaml") + "\n" +
		"output:\n  dir: " + filepath.Join(dir, "out") + "\n" +
		"logging:\n  level: error\n" + extraConfig
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	h := &harness{t: t, dir: dir, cfgPath: cfgPath, exporter: &fakeExporter{}}
	h.env = app.New()
	h.env.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	h.env.NewExporter = func(config.ExportConfig) export.Exporter { return h.exporter }
	return h
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmdWithEnv(h.env)
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) form() form.State {
	h.t.Helper()
	st, err := form.Load(filepath.Join(h.dir, "form.yaml"))
	require.NoError(h.t, err)
	return st
}

func exitCode(err error) int { return clierr.ExitCodeOf(err) }

func TestVersion(t *testing.T) {
	h := newHarness(t, "")
	out := h.mustRun("version")
	assert.Contains(t, out, "Sprintboard version ")
}

func TestForm_Commands(t *testing.T) {
	h := newHarness(t, "")

	out := h.mustRun("form", "init")
	assert.Contains(t, out, "Form initialized")
	assert.FileExists(t, filepath.Join(h.dir, "form.yaml"))

	_, err := h.run("", "form", "init")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	h.mustRun("form", "init", "--force")

	h.mustRun("form", "set", "--increment", "18")
	assert.Equal(t, "18.1", h.form().CurrentSprint, "changing the increment resets the sprint")

	_, err = h.run("", "form", "set", "--sprint", "17.3")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))

	h.mustRun("form", "set", "--sprint", "18.4", "--range", "18.1 - 18.4")
	st := h.form()
	assert.Equal(t, 18, st.Increment)
	assert.Equal(t, "18.4", st.CurrentSprint)
	assert.Equal(t, "18.1 - 18.4", st.SprintRange)

	_, err = h.run("", "form", "set")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))

	out = h.mustRun("form", "metric", metrics.KeyDigital, "--delivered", "9", "--health", "3.456")
	assert.Contains(t, out, "DIGITAL: 9 / 39, health 3.46")
	d, _ := h.form().Categories.Lookup(metrics.KeyDigital)
	assert.Equal(t, metrics.Record{Delivered: 9, Total: 39, Health: 3.456}, d.Record)

	_, err = h.run("", "form", "metric", "unknown", "--total", "1")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	_, err = h.run("", "form", "metric", metrics.KeyDigital)
	assert.Equal(t, clierr.ExitUsage, exitCode(err))

	out = h.mustRun("form", "show")
	assert.Contains(t, out, "Current sprint: 18.4")
	assert.Contains(t, out, "ENTERPRISE APPLICATIONS")
	assert.Contains(t, out, "3.46")
}

func TestForm_SetRejectsNonPositiveIncrement(t *testing.T) {
	h := newHarness(t, "")
	h.mustRun("form", "init")

	for _, arg := range []string{"--increment=0", "--increment=-3"} {
		_, err := h.run("", "form", "set", arg)
		assert.Equal(t, clierr.ExitUsage, exitCode(err), arg)
		assert.ErrorIs(t, err, sprint.ErrInvalidIncrement, arg)

		st := h.form()
		assert.Equal(t, 17, st.Increment, arg)
		assert.Equal(t, "17.1", st.CurrentSprint, arg)
	}
}

func TestForm_InvalidIncrementInFileIsFailure(t *testing.T) {
	h := newHarness(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "form.yaml"),
		[]byte("increment: 0\ncurrent_sprint: \"0.1\"\n"), 0o644))

	_, err := h.run("", "report", "generate", "--no-image")
	assert.Equal(t, clierr.ExitFailure, exitCode(err))
	assert.ErrorIs(t, err, sprint.ErrInvalidIncrement)
}

func TestForm_MetricRejectsNonFiniteHealth(t *testing.T) {
	h := newHarness(t, "")
	h.mustRun("form", "init")

	want, _ := metrics.DefaultCategories().Lookup(metrics.KeyDigital)
	for _, arg := range []string{"--health=NaN", "--health=+Inf", "--health=-Inf"} {
		_, err := h.run("", "form", "metric", metrics.KeyDigital, arg)
		assert.Equal(t, clierr.ExitUsage, exitCode(err), arg)

		got, _ := h.form().Categories.Lookup(metrics.KeyDigital)
		assert.Equal(t, want.Record, got.Record, arg)
	}

	h.mustRun("history", "save")
}

func TestReport_SheetRejectsNonPositiveIncrement(t *testing.T) {
	h := newHarness(t, "")
	workbook := filepath.Join(h.dir, "data.xlsx")
	cfg := sprint.Config{Increment: 0, CurrentSprint: "0.1", SprintRange: "0.1 - 0.1"}
	require.NoError(t, sheet.Write(workbook, cfg, metrics.DefaultCategories()))

	_, err := h.run("", "report", "sheet", "--input", workbook, "--no-image")
	assert.Equal(t, clierr.ExitFailure, exitCode(err))
	assert.ErrorIs(t, err, sprint.ErrInvalidIncrement)
}

func TestHistory_DeleteIndexErrors(t *testing.T) {
	h := newHarness(t, "")
	h.mustRun("history", "save")

	for _, arg := range []string{"0", "-1", "x", "2"} {
		_, err := h.run("", "history", "delete", "--yes", "--", arg)
		assert.Equal(t, clierr.ExitUsage, exitCode(err), arg)
		assert.Equal(t, 1, history.Open(filepath.Join(h.dir, "history.json"), nil).Len(), arg)
	}
}

func TestHistory_SaveListRestoreDelete(t *testing.T) {
	h := newHarness(t, "")

	out := h.mustRun("history", "list")
	assert.Contains(t, out, "No saved history.")

	h.mustRun("history", "save")
	h.mustRun("form", "set", "--sprint", "17.2")
	h.mustRun("form", "metric", metrics.KeyEnterpriseApplications, "--delivered", "4")
	out = h.mustRun("history", "save")
	assert.Contains(t, out, "Saved Increment 17 - Sprint 17.2 (2 snapshots)")

	out = h.mustRun("history", "list")
	first := strings.Index(out, "Increment 17 - Sprint 17.2")
	second := strings.Index(out, "Increment 17 - Sprint 17.1")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second, "newest snapshot is listed first")

	out = h.mustRun("history", "show", "1")
	assert.Contains(t, out, "Current sprint: 17.2")

	h.mustRun("history", "restore", "2")
	st := h.form()
	assert.Equal(t, "17.1", st.CurrentSprint)
	ea, _ := st.Categories.Lookup(metrics.KeyEnterpriseApplications)
	assert.Equal(t, 0, ea.Delivered)

	_, err := h.run("", "history", "restore", "3")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	_, err = h.run("", "history", "show", "zero")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	_, err = h.run("", "history", "delete")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))

	out, err = h.run("n\n", "history", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, 2, history.Open(filepath.Join(h.dir, "history.json"), nil).Len())

	h.mustRun("history", "delete", "1", "--yes")
	store := history.Open(filepath.Join(h.dir, "history.json"), nil)
	require.Equal(t, 1, store.Len())
	rec, err := store.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "17.1", rec.CurrentSprint)

	out, err = h.run("y\n", "history", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted Increment 17 - Sprint 17.1")
	assert.Zero(t, history.Open(filepath.Join(h.dir, "history.json"), nil).Len())
}

func TestHistory_Trend(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run("", "history", "trend")
	assert.Equal(t, clierr.ExitFailure, exitCode(err))

	h.mustRun("history", "save")
	h.mustRun("form", "set", "--sprint", "17.2")
	h.mustRun("history", "save")

	out := h.mustRun("history", "trend")
	path := filepath.Join(h.dir, "out", "sprint-trends.html")
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "DIGITAL TECHNOLOGY")
}

func TestReport_Generate(t *testing.T) {
	h := newHarness(t, "")

	out := h.mustRun("report", "generate")
	htmlPath := filepath.Join(h.dir, "out", "sprint-dashboard-17-17.1.html")
	assert.Contains(t, out, "Dashboard written to "+htmlPath)
	assert.Contains(t, out, "Image written to ")

	data, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INCREMENT 17")
	assert.FileExists(t, filepath.Join(h.dir, "out", "sprint-dashboard-17-17.1.png"))
	assert.Equal(t, 1, h.exporter.calls)
}

func TestReport_GenerateCustomOutNoImage(t *testing.T) {
	h := newHarness(t, "")

	target := filepath.Join(h.dir, "custom", "board")
	h.mustRun("report", "generate", "--out", target, "--no-image")

	assert.FileExists(t, target+".html")
	assert.NoFileExists(t, target+".png")
	assert.Zero(t, h.exporter.calls)
}

func TestReport_ExportDisabledInConfig(t *testing.T) {
	h := newHarness(t, "export:\n  enabled: false\n")

	h.mustRun("report", "generate")
	assert.Zero(t, h.exporter.calls)
}

func TestReport_ExportFailureIsWarning(t *testing.T) {
	h := newHarness(t, "")
	h.exporter.err = errors.New("chrome not found")

	out, err := h.run("", "report", "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Image export failed (HTML kept): chrome not found")
	assert.FileExists(t, filepath.Join(h.dir, "out", "sprint-dashboard-17-17.1.html"))
	assert.NoFileExists(t, filepath.Join(h.dir, "out", "sprint-dashboard-17-17.1.png"))
}

func TestReport_SampleAndSheet(t *testing.T) {
	h := newHarness(t, "")
	workbook := filepath.Join(h.dir, "data.xlsx")

	h.mustRun("report", "sample", "--out", workbook)
	assert.FileExists(t, workbook)

	out := h.mustRun("report", "sheet", "--input", workbook, "--no-image", "--out", filepath.Join(h.dir, "sheet.html"))
	assert.Contains(t, out, "Dashboard written to")

	data, err := os.ReadFile(filepath.Join(h.dir, "sheet.html"))
	require.NoError(t, err)
	html := string(data)
	assert.Contains(t, html, "TECHNOLOGY OPERATIONS")
	assert.Contains(t, html, "✓ MATRIX")

	_, err = h.run("", "report", "sheet")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	_, err = h.run("", "report", "sheet", "--input", filepath.Join(h.dir, "missing.xlsx"))
	assert.Equal(t, clierr.ExitFailure, exitCode(err))
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t, "")

	_, err := h.run("", "report", "generate", "--bogus")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))

	bad := newHarness(t, "export:\n  viewport_width: -1\n")
	_, err = bad.run("", "report", "generate")
	assert.Equal(t, clierr.ExitUsage, exitCode(err))
	assert.ErrorIs(t, err, config.ErrInvalidViewport)
}
