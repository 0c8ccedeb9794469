// Package logging builds the zap loggers used across dqe.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel parses "debug", "info", "warn" or "error", ignoring case and
// surrounding space. An empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return lvl, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	return lvl, nil
}

// New builds a logger at the given level. Format "json" selects the
// production JSON encoder; anything else selects the console encoder.
func New(level, format string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return Build(zap.NewAtomicLevelAt(lvl), format)
}

// Build builds a logger whose level follows level, so callers can raise or
// lower verbosity after construction. Logs go to stderr so command output
// stays clean.
func Build(level zap.AtomicLevel, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// Component returns a child logger tagged with a component name. A nil
// parent yields a no-op logger.
func Component(parent *zap.Logger, name string) *zap.Logger {
	if parent == nil {
		return zap.NewNop()
	}
	return parent.Named(name).With(zap.String("component", name))
}
