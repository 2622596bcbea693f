package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/bartekus/sprintboard/internal/render"
)

// DefaultViewportWidth matches the dashboard's max container width.
const DefaultViewportWidth = 1400

// ErrEmptyContainer is returned when the dashboard container has no height.
var ErrEmptyContainer = errors.New("dashboard container has no height")

// ChromeExporter drives a headless Chrome through chromedp.
type ChromeExporter struct {
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
	// ViewportWidth is the browser width in CSS pixels.
	ViewportWidth int
	// Timeout bounds one export. Zero means no limit.
	Timeout time.Duration
}

// Export loads htmlPath, sizes the viewport to the rendered container height
// and writes a screenshot of that element to imagePath.
func (e ChromeExporter) Export(ctx context.Context, htmlPath, imagePath string) error {
	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", htmlPath, err)
	}

	width := e.ViewportWidth
	if width <= 0 {
		width = DefaultViewportWidth
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.WindowSize(width, 800),
	)
	if e.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var height float64
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(absPath)),
		chromedp.WaitVisible(render.ContainerSelector, chromedp.ByQuery),
		chromedp.Evaluate(
			fmt.Sprintf("document.querySelector(%q).scrollHeight", render.ContainerSelector),
			&height,
		),
	)
	if err != nil {
		return fmt.Errorf("loading %s in browser: %w", absPath, err)
	}
	if height <= 0 {
		return ErrEmptyContainer
	}

	var png []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(width), int64(math.Ceil(height))),
		chromedp.Screenshot(render.ContainerSelector, &png, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("capturing %s: %w", render.ContainerSelector, err)
	}

	if err := os.WriteFile(imagePath, png, 0o644); err != nil {
		return fmt.Errorf("writing image %s: %w", imagePath, err)
	}
	return nil
}
