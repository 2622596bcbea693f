// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package export rasterizes rendered dashboards into PNG images.
package export

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Exporter captures the dashboard in htmlPath as an image at imagePath.
type Exporter interface {
	Export(ctx context.Context, htmlPath, imagePath string) error
}

// Result describes a finished export.
type Result struct {
	HTMLPath  string
	ImagePath string
	Duration  time.Duration
	Err       error
}

// Task is an export running in the background. Callers may Wait for it or
// ignore it; a failed export never affects the already written HTML file.
type Task struct {
	done   chan struct{}
	result Result
}

// Start runs exp in a new goroutine and returns immediately.
// The outcome is logged and available from the task once Done is closed.
func Start(ctx context.Context, exp Exporter, htmlPath, imagePath string, log *zap.SugaredLogger) *Task {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	t := &Task{done: make(chan struct{})}

	go func() {
		defer close(t.done)

		start := time.Now()
		err := exp.Export(ctx, htmlPath, imagePath)
		t.result = Result{
			HTMLPath:  htmlPath,
			ImagePath: imagePath,
			Duration:  time.Since(start),
			Err:       err,
		}

		if err != nil {
			log.Warnw("image export failed", "html", htmlPath, "image", imagePath, "error", err)
			return
		}
		log.Infow("image exported", "image", imagePath, "duration", t.result.Duration)
	}()

	return t
}

// Done is closed when the export has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the export finishes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.result.Err
}

// Result blocks until the export finishes and returns its outcome.
func (t *Task) Result() Result {
	<-t.done
	return t.result
}
