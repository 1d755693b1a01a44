package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field error of a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "configuration validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		sb.WriteString("\n  - " + err.Error())
	}
	return sb.String()
}

// Validate checks cfg and returns a ValidationError listing every problem.
func Validate(cfg *Config) error {
	var errs []FieldError
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level", "unknown level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		add("log.format", "unknown format %q", cfg.Log.Format)
	}

	if err := cfg.Layout.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			add("layout", "%s", line)
		}
	}

	switch cfg.Measure.Measurer {
	case MeasurerHeuristic, MeasurerNative:
	default:
		add("measure.measurer", "must be %q or %q, got %q", MeasurerHeuristic, MeasurerNative, cfg.Measure.Measurer)
	}

	if cfg.Match.Timeout < 0 {
		add("match.timeout", "must not be negative")
	}

	if cfg.Server.Address == "" {
		add("server.address", "must not be empty")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		add("server.max_body_bytes", "must be positive")
	}
	if !strings.HasPrefix(cfg.Server.MetricsPath, "/") {
		add("server.metrics_path", "must start with /")
	}

	if cfg.Watch.Debounce < 0 {
		add("watch.debounce", "must not be negative")
	}
	for _, pattern := range cfg.Watch.Include {
		if !doublestar.ValidatePattern(pattern) {
			add("watch.include", "invalid pattern %q", pattern)
		}
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}
