package regraph

import (
	"fmt"
	"log/slog"

	"github.com/KromDaniel/regraph/internal/codegen"
	"github.com/KromDaniel/regraph/internal/compiler"
	"github.com/KromDaniel/regraph/layout"
)

// GenerateOptions configures code generation.
type GenerateOptions struct {
	// Pattern and Flags form the expression to embed.
	Pattern string
	Flags   string

	// Name is the prefix for generated declarations (e.g., "Email" generates "EmailDiagram")
	Name string

	// OutputFile is the path where generated code will be written
	OutputFile string

	// Package is the Go package name for the generated code
	Package string

	// Layout overrides the layout constants. Generated diagrams always use
	// the heuristic measurer so that they can be reproduced in tests.
	Layout *layout.Config

	// GenerateTestFile generates a test that recomputes the diagram and
	// compares it with the generated one.
	GenerateTestFile bool

	// Verbose logs generation decisions to Logger.
	Verbose bool
	Logger  *slog.Logger
}

// Validate checks if the options are valid.
func (o GenerateOptions) Validate() error {
	if err := codegen.ValidateName(o.Name); err != nil {
		return err
	}
	if o.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if o.Package == "" {
		return fmt.Errorf("package cannot be empty")
	}
	return nil
}

func newCompiler(opts GenerateOptions) (*compiler.Compiler, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res, err := Build(Options{
		Pattern: opts.Pattern,
		Flags:   opts.Flags,
		Layout:  opts.Layout,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	if !res.ValidExpression {
		return nil, fmt.Errorf("failed to parse pattern: %w", res.Err())
	}

	cfg := layout.DefaultConfig()
	if opts.Layout != nil {
		cfg = *opts.Layout
	}
	return compiler.New(compiler.Config{
		Pattern:          opts.Pattern,
		Flags:            res.Expression.Flags.String(),
		Name:             opts.Name,
		OutputFile:       opts.OutputFile,
		Package:          opts.Package,
		AST:              res.AST,
		Diagram:          res.Diagram,
		Layout:           cfg,
		GenerateTestFile: opts.GenerateTestFile,
		Verbose:          opts.Verbose,
		Logger:           opts.Logger,
	}), nil
}

// Generate writes Go code embedding the diagram of the expression.
// It returns an error if the expression is invalid or generation fails.
func Generate(opts GenerateOptions) error {
	c, err := newCompiler(opts)
	if err != nil {
		return err
	}
	if err := c.Generate(); err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	return nil
}

// CheckGenerated compares the files Generate would write with the files on
// disk and returns a unified diff, empty when they are up to date.
func CheckGenerated(opts GenerateOptions) (string, error) {
	c, err := newCompiler(opts)
	if err != nil {
		return "", err
	}
	return c.Check()
}

// AnalysisResult describes the structure of a pattern.
type AnalysisResult = compiler.AnalysisResult

// Analyze returns feature labels and node statistics for an expression
// without laying it out.
func Analyze(pattern, flags string) (*AnalysisResult, error) {
	return compiler.AnalyzePattern(pattern, flags)
}
