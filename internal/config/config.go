// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Sprintboard - Sprintboard is a sprint delivery dashboard generator.
It collects per-category delivery metrics, keeps a local history of snapshots, and renders styled HTML and PNG reports for increment reviews.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package config loads sprintboard settings from file and environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/bartekus/sprintboard/internal/form"
	"github.com/bartekus/sprintboard/internal/history"
	"github.com/bartekus/sprintboard/internal/render"
)

// EnvPrefix prefixes environment overrides, e.g. SPRINTBOARD_OUTPUT_DIR.
const EnvPrefix = "SPRINTBOARD"

// Sentinel validation errors.
var (
	ErrEmptyPath        = errors.New("file path must not be empty")
	ErrInvalidViewport  = errors.New("export viewport width must be positive")
	ErrInvalidTimeout   = errors.New("export timeout must not be negative")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("log format must be console or json")
	ErrInvalidLogOutput = errors.New("log output must be stdout or stderr")
)

// Default configuration values.
const (
	defaultOutputDir     = "."
	defaultViewportWidth = 1400
	defaultTimeout       = "60s"
)

// Config holds all sprintboard settings.
type Config struct {
	History HistoryConfig `mapstructure:"history"`
	Form    FormConfig    `mapstructure:"form"`
	Output  OutputConfig  `mapstructure:"output"`
	Export  ExportConfig  `mapstructure:"export"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// HistoryConfig locates the snapshot history file.
type HistoryConfig struct {
	File string `mapstructure:"file"`
}

// FormConfig locates the editable form state.
type FormConfig struct {
	File string `mapstructure:"file"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExportConfig controls PNG export through headless Chrome.
type ExportConfig struct {
	ChromePath    string        `mapstructure:"chrome_path"`
	ViewportWidth int           `mapstructure:"viewport_width"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Enabled       bool          `mapstructure:"enabled"`
}

// ReportConfig holds the dashboard branding.
type ReportConfig struct {
	Title       string `mapstructure:"title"`
	Logo        string `mapstructure:"logo"`
	LogoCaption string `mapstructure:"logo_caption"`
	FontURL     string `mapstructure:"font_url"`
	FontFamily  string `mapstructure:"font_family"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Validate checks the logging settings.
func (c LoggingConfig) Validate() error {
	if _, err := zapcore.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Level)
	}
	if c.Format != "console" && c.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Format)
	}
	if c.Output != "stdout" && c.Output != "stderr" {
		return fmt.Errorf("%w: %q", ErrInvalidLogOutput, c.Output)
	}
	return nil
}

// Load reads configuration from configPath, or from sprintboard.yaml in the
// working directory when configPath is empty, then applies SPRINTBOARD_*
// environment overrides. A missing default file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sprintboard")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("history.file", history.DefaultFile)
	v.SetDefault("form.file", form.DefaultFile)
	v.SetDefault("output.dir", defaultOutputDir)

	v.SetDefault("export.enabled", true)
	v.SetDefault("export.chrome_path", "")
	v.SetDefault("export.viewport_width", defaultViewportWidth)
	v.SetDefault("export.timeout", defaultTimeout)

	branding := render.DefaultBranding()
	v.SetDefault("report.title", branding.Title)
	v.SetDefault("report.logo", branding.Logo)
	v.SetDefault("report.logo_caption", branding.LogoCaption)
	v.SetDefault("report.font_url", branding.FontURL)
	v.SetDefault("report.font_family", branding.FontFamily)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.History.File) == "" {
		return fmt.Errorf("%w: history.file", ErrEmptyPath)
	}
	if strings.TrimSpace(c.Form.File) == "" {
		return fmt.Errorf("%w: form.file", ErrEmptyPath)
	}
	if c.Export.ViewportWidth <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidViewport, c.Export.ViewportWidth)
	}
	if c.Export.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Export.Timeout)
	}
	return c.Logging.Validate()
}
