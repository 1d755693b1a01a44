package compiler

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/regraph/internal/codegen"
)

// generateTestFile writes a test that lays the pattern out again and
// compares the result with the generated diagram.
func (c *Compiler) generateTestFile() error {
	file := c.buildTestFile()
	path := c.TestFile()
	if err := file.Save(path); err != nil {
		return fmt.Errorf("failed to save test file: %w", err)
	}
	if err := formatFile(path); err != nil {
		return fmt.Errorf("failed to format test file: %w", err)
	}
	c.logger.Log("Wrote %s", path)
	return nil
}

func (c *Compiler) buildTestFile() *jen.File {
	name := c.config.Name
	file := jen.NewFile(c.config.Package)
	c.header(file)

	file.Func().Id(fmt.Sprintf("Test%s", codegen.DiagramName(name))).Params(
		jen.Id("t").Op("*").Qual("testing", "T"),
	).Block(
		jen.Id("cfg").Op(":=").Id(codegen.LayoutName(name)).Call(),
		jen.List(jen.Id("res"), jen.Err()).Op(":=").Qual(codegen.RegraphPkg, "Build").Call(
			jen.Qual(codegen.RegraphPkg, "Options").Values(jen.Dict{
				jen.Id("Pattern"): jen.Id(codegen.PatternName(name)),
				jen.Id("Flags"):   jen.Id(codegen.FlagsName(name)),
				jen.Id("Layout"):  jen.Op("&").Id("cfg"),
			}),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Id("t").Dot("Fatal").Call(jen.Err()),
		),
		jen.If(jen.Op("!").Id("res").Dot("ValidExpression")).Block(
			jen.Id("t").Dot("Fatalf").Call(jen.Lit("expression rejected: %v"), jen.Id("res").Dot("Err").Call()),
		),
		jen.If(
			jen.List(jen.Id("got"), jen.Id("want")).Op(":=").List(jen.Id("res").Dot("Diagram"), jen.Id(codegen.DiagramName(name)).Call()),
			jen.Op("!").Qual("reflect", "DeepEqual").Call(jen.Id("got"), jen.Id("want")),
		).Block(
			jen.Id("t").Dot("Error").Call(jen.Lit("generated diagram is out of date, run regraph gen again")),
		),
	)
	return file
}
