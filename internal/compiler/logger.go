package compiler

import (
	"fmt"
	"log/slog"
)

// Logger provides verbose output for generation decisions.
type Logger struct {
	enabled bool
	logger  *slog.Logger
	section string
}

// NewLogger creates a new logger instance. A nil logger writes to the
// slog default logger.
func NewLogger(enabled bool, logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		enabled: enabled,
		logger:  logger.With("component", "gen"),
	}
}

// Log prints a formatted message if verbose mode is enabled.
func (l *Logger) Log(format string, args ...any) {
	if l.enabled {
		l.logger.Info(fmt.Sprintf(format, args...), "section", l.section)
	}
}

// Section starts a new section. Later messages carry its name.
func (l *Logger) Section(name string) {
	l.section = name
	if l.enabled {
		l.logger.Info("=== " + name + " ===")
	}
}

// Enabled returns whether the logger is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
