// Package logger provides structured logging using zap.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bartekus/sprintboard/internal/config"
)

// New creates a sugared logger from the logging configuration.
// Invalid levels fall back to info.
func New(cfg config.LoggingConfig) (*zap.SugaredLogger, error) {
	zapConfig := zap.NewProductionConfig()

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	if cfg.Format == "json" {
		zapConfig.Encoding = "json"
	} else {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapConfig.DisableStacktrace = level > zapcore.DebugLevel
	zapConfig.Sampling = nil

	output := cfg.Output
	if output != "stdout" {
		output = "stderr"
	}
	zapConfig.OutputPaths = []string{output}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar(), nil
}

// Verbose returns cfg with the level forced to debug.
func Verbose(cfg config.LoggingConfig) config.LoggingConfig {
	cfg.Level = "debug"
	return cfg
}
