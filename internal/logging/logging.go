// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ParseLevel maps a level name ("debug", "INFO", "warn", ...) onto a zap
// level. "trace" is treated as debug.
func ParseLevel(level string) (zapcore.Level, error) {
	s := strings.ToLower(strings.TrimSpace(level))
	switch s {
	case "":
		return zapcore.InfoLevel, nil
	case "trace":
		return zapcore.DebugLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// Config returns the zap config for level and format. Logs go to stderr so
// that reports written to stdout stay machine-readable.
func Config(level, format string) (zap.Config, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("log level: %w", err)
	}

	var enc zapcore.EncoderConfig
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatConsole, "":
		format = FormatConsole
		enc = zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case FormatJSON:
		format = FormatJSON
		enc = zap.NewProductionEncoderConfig()
	default:
		return zap.Config{}, fmt.Errorf("log format %q (want console or json)", format)
	}
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	return zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Development:       false,
		DisableStacktrace: lvl > zapcore.DebugLevel,
		Encoding:          format,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		EncoderConfig:     enc,
	}, nil
}

// New builds a logger for level and format.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := Config(level, format)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}
