// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package app holds the state shared by sprintboard subcommands.
package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bartekus/sprintboard/cmd/sprintboard/internal/clierr"
	"github.com/bartekus/sprintboard/internal/config"
	"github.com/bartekus/sprintboard/internal/export"
	"github.com/bartekus/sprintboard/internal/fileio"
	"github.com/bartekus/sprintboard/internal/form"
	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/logger"
	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/render"
	"github.com/bartekus/sprintboard/internal/sprint"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)

// Env is populated by the root command before any subcommand runs.
type Env struct {
	ConfigPath string
	Verbose    bool

	Config *config.Config
	Log    *zap.SugaredLogger

	// Now and NewExporter are replaced in tests.
	Now         func() time.Time
	NewExporter func(config.ExportConfig) export.Exporter
}

// New returns an Env with production hooks.
func New() *Env {
	return &Env{
		Now: time.Now,
		NewExporter: func(c config.ExportConfig) export.Exporter {
			return export.ChromeExporter{ExecPath: c.ChromePath, ViewportWidth: c.ViewportWidth, Timeout: c.Timeout}
		},
	}
}

// Init loads configuration and builds the logger.
func (e *Env) Init() error {
	cfg, err := config.Load(e.ConfigPath)
	if err != nil {
		return clierr.Usage("loading configuration", err)
	}

	logCfg := cfg.Logging
	if e.Verbose {
		logCfg = logger.Verbose(logCfg)
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return clierr.Usage("building logger", err)
	}

	e.Config = cfg
	e.Log = log
	e.Log.Debugw("configuration loaded",
		"config", e.ConfigPath, "history", cfg.History.File, "form", cfg.Form.File, "output", cfg.Output.Dir)
	return nil
}

// Sync flushes buffered log entries.
func (e *Env) Sync() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
}

// History opens the configured history store.
func (e *Env) History() *history.Store {
	return history.Open(e.Config.History.File, e.Log)
}

// LoadForm reads the configured form state.
func (e *Env) LoadForm() (form.State, error) {
	st, err := form.Load(e.Config.Form.File)
	if err != nil {
		return form.State{}, clierr.Failure("loading form", err)
	}
	return st, nil
}

// SaveForm writes st to the configured form file.
func (e *Env) SaveForm(st form.State) error {
	if err := st.Save(e.Config.Form.File); err != nil {
		return clierr.Failure("saving form", err)
	}
	e.Log.Debugw("form saved", "path", e.Config.Form.File)
	return nil
}

// Renderer applies the configured branding.
func (e *Env) Renderer() render.Renderer {
	r := e.Config.Report
	return render.Renderer{Branding: render.Branding{
		Title:       r.Title,
		Logo:        r.Logo,
		LogoCaption: r.LogoCaption,
		FontURL:     r.FontURL,
		FontFamily:  r.FontFamily,
	}}
}

// OutputPath returns out with an .html extension, or the default report
// name inside the configured output directory when out is empty.
func (e *Env) OutputPath(cfg sprint.Config, out string) string {
	if out == "" {
		return filepath.Join(e.Config.Output.Dir, render.DefaultFileName(cfg))
	}
	return render.EnsureHTMLExt(out)
}

// ParseIndex converts a 1-based index argument as shown by history list.
func ParseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, clierr.Usagef("invalid index %q: want a positive number as shown by 'history list'", arg)
	}
	return n - 1, nil
}

// ExactArgs is cobra.ExactArgs reported as a usage error.
func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return clierr.Usagef("%s: accepts %d arg(s), received %d", cmd.CommandPath(), n, len(args))
		}
		return nil
	}
}

// WriteReport renders the dashboard, writes it to out and, unless disabled,
// exports the PNG next to it. Export failures are reported as warnings only.
func (e *Env) WriteReport(ctx context.Context, w io.Writer, cfg sprint.Config, set metrics.CategorySet, out string, noImage bool) error {
	html, err := e.Renderer().Render(cfg, set)
	if err != nil {
		return clierr.Failure("rendering dashboard", err)
	}

	path := e.OutputPath(cfg, out)
	if err := fileio.WriteAtomic(path, []byte(html), 0o644); err != nil {
		return clierr.Failure("writing dashboard", err)
	}
	e.Log.Infow("dashboard written", "path", path, "increment", cfg.Increment, "sprint", cfg.CurrentSprint)
	OK(w, "Dashboard written to %s", path)

	if noImage || !e.Config.Export.Enabled {
		e.Log.Debugw("image export skipped", "no_image", noImage, "enabled", e.Config.Export.Enabled)
		return nil
	}

	task := export.Start(ctx, e.NewExporter(e.Config.Export), path, render.ImagePath(path), e.Log)
	res := task.Result()
	if res.Err != nil {
		Warn(w, "Image export failed (HTML kept): %v", res.Err)
		return nil
	}
	OK(w, "Image written to %s", res.ImagePath)
	return nil
}

// OK prints a success line.
func OK(w io.Writer, format string, args ...any) {
	_, _ = okColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// Warn prints a warning line.
func Warn(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, "! "+format+"\n", args...)
}

// Confirm asks a yes/no question on in and reports whether the answer was yes.
func Confirm(in io.Reader, w io.Writer, question string) bool {
	_, _ = fmt.Fprintf(w, "%s [y/N]: ", question)
	var answer string
	if _, err := fmt.Fscanln(in, &answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}
