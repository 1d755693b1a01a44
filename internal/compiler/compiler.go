// Package compiler generates Go source that embeds a laid out diagram, so
// that programs can render a pattern without parsing it at run time.
package compiler

import (
	"bytes"
	"fmt"
	"go/format"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/internal/codegen"
	"github.com/KromDaniel/regraph/layout"
)

// Config holds the configuration for code generation.
type Config struct {
	Pattern          string
	Flags            string
	Name             string
	OutputFile       string
	Package          string
	AST              *ast.Pattern    // Parsed pattern, used for analysis output
	Diagram          *layout.Diagram // Diagram to embed
	Layout           layout.Config   // Constants the diagram was laid out with
	GenerateTestFile bool            // Generate a test that recomputes the diagram
	Verbose          bool            // Enable verbose logging of generation decisions
	Logger           *slog.Logger
}

// Compiler generates Go code from a laid out diagram.
type Compiler struct {
	config   Config
	logger   *Logger
	analysis *AnalysisResult
}

// New creates a new compiler instance.
func New(config Config) *Compiler {
	c := &Compiler{
		config: config,
		logger: NewLogger(config.Verbose, config.Logger),
	}
	c.analyzeAndLog()
	return c
}

// analyzeAndLog records pattern and diagram statistics in verbose mode.
func (c *Compiler) analyzeAndLog() {
	c.logger.Section("Pattern Analysis")
	c.logger.Log("Expression: /%s/%s", c.config.Pattern, c.config.Flags)
	if c.config.AST != nil {
		f, _ := expr.ParseFlags(c.config.Flags)
		c.analysis = analyze(c.config.AST, f)
		c.logger.Log("Nodes: %d", c.analysis.Nodes)
		c.logger.Log("Depth: %d", c.analysis.Depth)
		c.logger.Log("Features: %s", strings.Join(c.analysis.FeatureLabels, ", "))
	}

	c.logger.Section("Diagram")
	if d := c.config.Diagram; d != nil {
		nodes := 0
		d.Walk(func(*layout.Node) { nodes++ })
		c.logger.Log("Size: %gx%g", d.Width, d.Height)
		c.logger.Log("Nodes: %d, edges: %d", nodes, len(d.Edges))
	}
	c.logger.Log("Test file: %v", c.config.GenerateTestFile)
}

// Analysis returns the analysis of the configured AST, or nil without one.
func (c *Compiler) Analysis() *AnalysisResult {
	return c.analysis
}

// SetOutputFile sets the output file path.
func (c *Compiler) SetOutputFile(path string) {
	c.config.OutputFile = path
}

// TestFile returns the path of the generated test file.
func (c *Compiler) TestFile() string {
	return strings.TrimSuffix(c.config.OutputFile, ".go") + "_test.go"
}

// Generate generates the Go code and writes it to the output file.
func (c *Compiler) Generate() error {
	if c.config.Diagram == nil {
		return fmt.Errorf("no diagram to generate")
	}

	file := c.buildFile()
	if err := file.Save(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	if err := formatFile(c.config.OutputFile); err != nil {
		return fmt.Errorf("failed to format file: %w", err)
	}
	c.logger.Log("Wrote %s", c.config.OutputFile)

	if c.config.GenerateTestFile {
		if err := c.generateTestFile(); err != nil {
			return fmt.Errorf("failed to generate test file: %w", err)
		}
	}
	return nil
}

// Render returns the formatted source of the output file without writing it.
func (c *Compiler) Render() ([]byte, error) {
	if c.config.Diagram == nil {
		return nil, fmt.Errorf("no diagram to generate")
	}
	return render(c.buildFile())
}

func render(file *jen.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := file.Render(&buf); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

func (c *Compiler) header(file *jen.File) {
	file.HeaderComment(fmt.Sprintf("Code generated by regraph for /%s/%s. DO NOT EDIT.", c.config.Pattern, c.config.Flags))
}

func (c *Compiler) buildFile() *jen.File {
	name := c.config.Name
	file := jen.NewFile(c.config.Package)
	c.header(file)

	file.Commentf("%s is the source of the expression.", codegen.PatternName(name))
	file.Const().Id(codegen.PatternName(name)).Op("=").Lit(c.config.Pattern)
	file.Line()
	file.Commentf("%s holds the expression flags.", codegen.FlagsName(name))
	file.Const().Id(codegen.FlagsName(name)).Op("=").Lit(c.config.Flags)
	file.Line()

	file.Commentf("%s returns the constants the diagram was laid out with.", codegen.LayoutName(name))
	file.Func().Id(codegen.LayoutName(name)).Params().Qual(codegen.LayoutPkg, "Config").Block(
		jen.Return(configLit(c.config.Layout)),
	)
	file.Line()

	file.Commentf("%s returns a fresh copy of the laid out diagram.", codegen.DiagramName(name))
	file.Func().Id(codegen.DiagramName(name)).Params().Op("*").Qual(codegen.LayoutPkg, "Diagram").Block(
		jen.Return(diagramLit(c.config.Diagram)),
	)
	return file
}

// formatFile reads a file, formats it with go/format, and writes it back.
func formatFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	formatted, err := format.Source(src)
	if err != nil {
		return err
	}

	return os.WriteFile(path, formatted, 0644)
}

func diagramLit(d *layout.Diagram) jen.Code {
	dict := jen.Dict{
		jen.Id("Width"):  jen.Lit(d.Width),
		jen.Id("Height"): jen.Lit(d.Height),
		jen.Id("Start"):  rectLit(d.Start),
		jen.Id("End"):    rectLit(d.End),
	}
	if d.Root != nil {
		dict[jen.Id("Root")] = nodeLit(d.Root)
	}
	if len(d.Edges) > 0 {
		dict[jen.Id("Edges")] = jen.Index().Qual(codegen.LayoutPkg, "Edge").ValuesFunc(func(g *jen.Group) {
			for _, e := range d.Edges {
				g.Values(jen.Dict{
					jen.Id("From"): pointLit(e.From),
					jen.Id("To"):   pointLit(e.To),
				})
			}
		})
	}
	return jen.Op("&").Qual(codegen.LayoutPkg, "Diagram").Values(dict)
}

func nodeLit(n *layout.Node) jen.Code {
	dict := jen.Dict{
		jen.Id("ID"):      jen.Lit(n.ID),
		jen.Id("Kind"):    jen.Qual(codegen.ASTPkg, codegen.KindName(n.Kind.String())),
		jen.Id("Start"):   jen.Lit(n.Start),
		jen.Id("End"):     jen.Lit(n.End),
		jen.Id("Box"):     rectLit(n.Box),
		jen.Id("Content"): rectLit(n.Content),
	}
	if n.Name != "" {
		dict[jen.Id("Name")] = jen.Lit(n.Name)
	}
	if n.Quantifier != "" {
		dict[jen.Id("Quantifier")] = jen.Lit(n.Quantifier)
	}
	if n.Greedy {
		dict[jen.Id("Greedy")] = jen.True()
	}
	if len(n.Lines) > 0 {
		dict[jen.Id("Lines")] = jen.Index().String().ValuesFunc(func(g *jen.Group) {
			for _, l := range n.Lines {
				g.Lit(l)
			}
		})
	}
	if len(n.Children) > 0 {
		dict[jen.Id("Children")] = jen.Index().Op("*").Qual(codegen.LayoutPkg, "Node").ValuesFunc(func(g *jen.Group) {
			for _, child := range n.Children {
				g.Add(nodeLit(child))
			}
		})
	}
	return jen.Op("&").Qual(codegen.LayoutPkg, "Node").Values(dict)
}

func rectLit(r layout.Rect) jen.Code {
	return jen.Qual(codegen.LayoutPkg, "Rect").Values(floatDict(
		"X", r.X, "Y", r.Y, "Width", r.Width, "Height", r.Height,
	))
}

func pointLit(p layout.Point) jen.Code {
	return jen.Qual(codegen.LayoutPkg, "Point").Values(floatDict("X", p.X, "Y", p.Y))
}

// floatDict builds a dict from name/value pairs, leaving out zero values.
func floatDict(pairs ...any) jen.Dict {
	dict := jen.Dict{}
	for i := 0; i < len(pairs); i += 2 {
		if v := pairs[i+1].(float64); v != 0 {
			dict[jen.Id(pairs[i].(string))] = jen.Lit(v)
		}
	}
	return dict
}

// configLit renders every field of cfg, so the literal follows the struct.
func configLit(cfg layout.Config) jen.Code {
	v := reflect.ValueOf(cfg)
	t := v.Type()
	dict := jen.Dict{}
	for i := 0; i < t.NumField(); i++ {
		dict[jen.Id(t.Field(i).Name)] = jen.Lit(v.Field(i).Interface())
	}
	return jen.Qual(codegen.LayoutPkg, "Config").Values(dict)
}
