// Package config loads regraph settings from YAML with environment overrides.
package config

import (
	"time"

	"github.com/KromDaniel/regraph/layout"
	"github.com/KromDaniel/regraph/matcher"
)

// Measurer names.
const (
	MeasurerHeuristic = "heuristic"
	MeasurerNative    = "native"
)

// Config is the root configuration.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Layout  layout.Config `yaml:"layout"`
	Measure MeasureConfig `yaml:"measure"`
	Match   MatchConfig   `yaml:"match"`
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LogConfig selects the log level ("debug", "info", "warn", "error") and
// format ("text", "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MeasureConfig selects how label text is measured. The heuristic measurer
// is reproducible everywhere; the native one uses real font metrics.
type MeasureConfig struct {
	Measurer string `yaml:"measurer"`
}

// MatchConfig bounds each match attempt.
type MatchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig configures `regraph serve`.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	MetricsPath     string        `yaml:"metrics_path"`
}

// WatchConfig configures `regraph watch`. Include holds doublestar patterns
// matched against changed paths.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Include  []string      `yaml:"include"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	applyLayoutDefaults(&cfg.Layout)

	if cfg.Measure.Measurer == "" {
		cfg.Measure.Measurer = MeasurerHeuristic
	}
	if cfg.Match.Timeout == 0 {
		cfg.Match.Timeout = matcher.DefaultTimeout
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = "127.0.0.1:8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.MetricsPath == "" {
		cfg.Server.MetricsPath = "/metrics"
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 100 * time.Millisecond
	}
	if len(cfg.Watch.Include) == 0 {
		cfg.Watch.Include = []string{"**/*.yaml", "**/*.yml"}
	}
}

// applyLayoutDefaults fills zero layout constants one by one, so a file may
// override a single constant.
func applyLayoutDefaults(c *layout.Config) {
	d := layout.DefaultConfig()
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	for _, f := range []struct {
		field *float64
		def   float64
	}{
		{&c.TextFontSize, d.TextFontSize},
		{&c.QuantifierFontSize, d.QuantifierFontSize},
		{&c.NodePaddingHorizontal, d.NodePaddingHorizontal},
		{&c.NodePaddingVertical, d.NodePaddingVertical},
		{&c.QuotePadding, d.QuotePadding},
		{&c.NodeMinWidth, d.NodeMinWidth},
		{&c.NodeMinHeight, d.NodeMinHeight},
		{&c.NodeMarginHorizontal, d.NodeMarginHorizontal},
		{&c.NodeMarginVertical, d.NodeMarginVertical},
		{&c.ChoicePaddingHorizontal, d.ChoicePaddingHorizontal},
		{&c.ChoicePaddingVertical, d.ChoicePaddingVertical},
		{&c.IconSize, d.IconSize},
		{&c.NameHeight, d.NameHeight},
		{&c.QuantifierHeight, d.QuantifierHeight},
		{&c.RootRadius, d.RootRadius},
	} {
		if *f.field == 0 {
			*f.field = f.def
		}
	}
}
