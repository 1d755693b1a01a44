// Package regraph turns an ECMAScript regular expression into a laid out
// railroad diagram, and runs sessions that combine the diagram with match
// highlighting and test cases.
package regraph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/internal/metrics"
	"github.com/KromDaniel/regraph/internal/parser"
	"github.com/KromDaniel/regraph/layout"
	"github.com/KromDaniel/regraph/measure"
)

// Options configures a build.
type Options struct {
	// Pattern is the expression body, without slashes.
	Pattern string

	// Flags is the flag string, e.g. "gi".
	Flags string

	// Layout overrides the layout constants. Nil uses layout.DefaultConfig.
	Layout *layout.Config

	// Measurer measures label text. Nil uses the heuristic measurer, which
	// needs no fonts and gives reproducible output.
	Measurer measure.Measurer

	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger

	// Metrics records build results when set.
	Metrics *metrics.Collector
}

// Validate checks the options themselves. An invalid pattern is not an
// options error; it is reported through Result.
func (o Options) Validate() error {
	if o.Layout != nil {
		if err := o.Layout.Validate(); err != nil {
			return fmt.Errorf("layout: %w", err)
		}
	}
	return nil
}

func (o Options) engine() *layout.Engine {
	opts := []layout.Option{layout.WithMeasurer(o.Measurer), layout.WithLogger(o.Logger)}
	if o.Layout != nil {
		opts = append(opts, layout.WithConfig(*o.Layout))
	}
	return layout.New(opts...)
}

// Result is the outcome of one build. ValidPattern checks the pattern alone;
// ValidExpression checks the whole /pattern/flags literal. AST and Diagram
// are only populated for a valid expression.
type Result struct {
	Pattern         string
	Flags           string
	Expression      expr.Expression
	ValidPattern    bool
	ValidExpression bool
	PatternErr      error
	ExpressionErr   error
	AST             *ast.Pattern
	Diagram         *layout.Diagram
}

// Literal renders the input as typed, including invalid flags.
func (r *Result) Literal() string {
	return "/" + r.Pattern + "/" + r.Flags
}

// Err returns the error that made the expression invalid, if any.
func (r *Result) Err() error {
	if r.ExpressionErr != nil {
		return r.ExpressionErr
	}
	return r.PatternErr
}

type resultJSON struct {
	Pattern         string          `json:"pattern" yaml:"pattern"`
	Flags           string          `json:"flags" yaml:"flags"`
	ValidPattern    bool            `json:"validPattern" yaml:"validPattern"`
	ValidExpression bool            `json:"validExpression" yaml:"validExpression"`
	PatternError    string          `json:"patternError,omitempty" yaml:"patternError,omitempty"`
	ExpressionError string          `json:"expressionError,omitempty" yaml:"expressionError,omitempty"`
	Diagram         *layout.Diagram `json:"diagram" yaml:"diagram"`
}

func (r *Result) view() resultJSON {
	v := resultJSON{
		Pattern:         r.Pattern,
		Flags:           r.Flags,
		ValidPattern:    r.ValidPattern,
		ValidExpression: r.ValidExpression,
		Diagram:         r.Diagram,
	}
	if r.PatternErr != nil {
		v.PatternError = r.PatternErr.Error()
	}
	if r.ExpressionErr != nil {
		v.ExpressionError = r.ExpressionErr.Error()
	}
	return v
}

// MarshalJSON renders errors as strings and omits the syntax tree.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML mirrors MarshalJSON.
func (r *Result) MarshalYAML() (any, error) {
	return r.view(), nil
}

// Build parses and lays out one expression. It only fails for invalid
// options; a malformed expression yields a Result with ValidExpression unset,
// a nil AST and an empty diagram.
func Build(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	res := &Result{
		Pattern: opts.Pattern,
		Flags:   opts.Flags,
		Diagram: &layout.Diagram{},
	}
	res.PatternErr = parser.ValidatePattern(opts.Pattern)
	res.ValidPattern = res.PatternErr == nil
	res.ExpressionErr = parser.ValidateLiteral(opts.Pattern, opts.Flags)
	res.ValidExpression = res.ExpressionErr == nil

	if !res.ValidExpression {
		result := metrics.ResultInvalidExpression
		if !res.ValidPattern {
			result = metrics.ResultInvalidPattern
		}
		opts.Metrics.RecordBuild(result, 0, 0)
		logger.Debug("expression rejected", "literal", res.Literal(), "error", res.Err())
		return res, nil
	}

	e, err := expr.New(opts.Pattern, opts.Flags)
	if err != nil {
		// ValidateLiteral already checked the flags.
		return nil, fmt.Errorf("build %s: %w", res.Literal(), err)
	}
	res.Expression = e

	pattern, err := parser.Parse(e.Source, e.Flags)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", res.Literal(), err)
	}
	res.AST = pattern

	start := time.Now()
	res.Diagram = opts.engine().Layout(pattern)
	elapsed := time.Since(start)

	nodes := 0
	res.Diagram.Walk(func(*layout.Node) { nodes++ })
	opts.Metrics.RecordBuild(metrics.ResultValid, nodes, elapsed)
	logger.Debug("expression built", "literal", e.Literal(), "nodes", nodes, "elapsed", elapsed)
	return res, nil
}
