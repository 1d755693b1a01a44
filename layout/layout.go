// Package layout computes a positioned railroad diagram for a parsed pattern.
//
// Layout runs in two passes. Measure visits the tree in post-order and
// records a content size and a box size for every node; the box adds room for
// the name label above and the quantifier label below. Arrange then walks the
// tree top-down and turns the sizes into rectangles and connecting edges.
package layout

import (
	"log/slog"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/measure"
)

// Engine runs both layout passes with one measurer and one set of constants.
// An Engine holds no state between calls and is safe for concurrent use if
// its measurer is.
type Engine struct {
	config   Config
	measurer measure.Measurer
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default constants.
func WithConfig(c Config) Option {
	return func(e *Engine) { e.config = c }
}

// WithMeasurer replaces the default heuristic measurer.
func WithMeasurer(m measure.Measurer) Option {
	return func(e *Engine) {
		if m != nil {
			e.measurer = m
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine. Without options it uses DefaultConfig and the
// heuristic measurer, which makes layout reproducible without any font.
func New(opts ...Option) *Engine {
	e := &Engine{
		config:   DefaultConfig(),
		measurer: measure.Heuristic{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's constants.
func (e *Engine) Config() Config {
	return e.config
}

// Layout runs both passes. A nil pattern yields an empty diagram.
func (e *Engine) Layout(pattern *ast.Pattern) *Diagram {
	if pattern == nil {
		return &Diagram{}
	}
	sizes := e.Measure(pattern)
	d := e.Arrange(pattern, sizes)
	e.logger.Debug("layout complete",
		"pattern", pattern.Raw,
		"nodes", len(sizes),
		"width", d.Width,
		"height", d.Height)
	return d
}
