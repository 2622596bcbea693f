// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package render turns a sprint configuration and its category metrics into
// a self-contained HTML dashboard.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/bartekus/sprintboard/internal/metrics"
	"github.com/bartekus/sprintboard/internal/sprint"
)

// ContainerSelector selects the root element an image export captures.
const ContainerSelector = ".container"

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// Branding holds the fixed texts and font around the metrics.
type Branding struct {
	Title       string
	Logo        string
	LogoCaption string
	// FontURL is an optional stylesheet link, e.g. a web font.
	FontURL    string
	FontFamily string
}

// DefaultBranding returns the branding of the stock dashboard.
func DefaultBranding() Branding {
	return Branding{
		Title:       "DIGITAL TECHNOLOGY",
		Logo:        "SIME",
		LogoCaption: "INDUSTRIAL",
		FontFamily:  "Arial, sans-serif",
	}
}

// Renderer renders dashboards with a given branding.
type Renderer struct {
	Branding Branding
}

// Render renders the dashboard with the default branding.
func Render(cfg sprint.Config, set metrics.CategorySet) (string, error) {
	return Renderer{Branding: DefaultBranding()}.Render(cfg, set)
}

type progressItem struct {
	Label  string
	Active bool
}

type card struct {
	Name        string
	Items       []string
	Delivered   int
	Total       int
	Health      string
	HeaderClass string
	BodyClass   string
	NumberClass string
	LabelClass  string
}

type page struct {
	Heading     string
	Increment   int
	SprintRange string
	Logo        string
	LogoCaption string
	FontURL     string
	FontFamily  template.CSS
	Columns     int
	MaxHealth   string
	Progress    []progressItem
	Cards       []card
}

// Render returns the complete HTML document. Output depends only on the
// arguments: the same inputs always produce the same bytes.
//
// A progress item is marked active only when it equals cfg.CurrentSprint;
// a current sprint outside the increment leaves every item inactive.
func (r Renderer) Render(cfg sprint.Config, set metrics.CategorySet) (string, error) {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, r.page(cfg, set)); err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	return buf.String(), nil
}

func (r Renderer) page(cfg sprint.Config, set metrics.CategorySet) page {
	b := r.Branding
	if b.FontFamily == "" {
		b.FontFamily = DefaultBranding().FontFamily
	}

	labels := cfg.Labels()
	progress := make([]progressItem, len(labels))
	for i, l := range labels {
		progress[i] = progressItem{Label: l, Active: l == cfg.CurrentSprint}
	}

	cards := make([]card, len(set))
	for i, c := range set {
		cards[i] = newCard(c, i == 0)
	}

	return page{
		Heading:     b.Title,
		Increment:   cfg.Increment,
		SprintRange: cfg.SprintRange,
		Logo:        b.Logo,
		LogoCaption: b.LogoCaption,
		FontURL:     b.FontURL,
		FontFamily:  template.CSS(b.FontFamily),
		Columns:     max(len(cards), 1),
		MaxHealth:   metrics.FormatHealth(metrics.MaxHealth),
		Progress:    progress,
		Cards:       cards,
	}
}

// newCard applies the fixed card styling: the first card is solid with a
// white body, every later card uses the gradient header and body.
func newCard(c metrics.Category, primary bool) card {
	out := card{
		Name:        c.Name,
		Items:       c.Items,
		Delivered:   c.Delivered,
		Total:       c.Total,
		Health:      c.HealthLabel(),
		HeaderClass: "card-header-secondary",
		BodyClass:   "card-body",
		NumberClass: "metric-largewhite",
		LabelClass:  "metric-labelwhite",
	}
	if primary {
		out.HeaderClass = "card-header-primary"
		out.BodyClass = "maincard-body"
		out.NumberClass = "metric-large"
		out.LabelClass = "metric-label"
	}
	return out
}

// DefaultFileName is the suggested output name, e.g. "sprint-dashboard-17-17.1.html".
func DefaultFileName(cfg sprint.Config) string {
	return fmt.Sprintf("sprint-dashboard-%d-%s.html", cfg.Increment, cfg.CurrentSprint)
}

// EnsureHTMLExt appends ".html" unless path already ends with it.
func EnsureHTMLExt(path string) string {
	if strings.HasSuffix(path, ".html") {
		return path
	}
	return path + ".html"
}

// ImagePath returns the PNG path written next to an HTML report.
func ImagePath(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".png"
}
