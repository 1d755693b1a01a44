package compiler

import (
	"bytes"
	"go/parser"
	"go/token"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regraph/expr"
	regexparser "github.com/KromDaniel/regraph/internal/parser"
	"github.com/KromDaniel/regraph/layout"
)

func newTestCompiler(t *testing.T, pattern, flags, dir string, withTest bool) *Compiler {
	t.Helper()
	p, err := regexparser.Parse(pattern, expr.MustParseFlags(flags))
	require.NoError(t, err)
	engine := layout.New()
	return New(Config{
		Pattern:          pattern,
		Flags:            flags,
		Name:             "Test",
		Package:          "generated",
		OutputFile:       filepath.Join(dir, "test.go"),
		AST:              p,
		Diagram:          engine.Layout(p),
		Layout:           engine.Config(),
		GenerateTestFile: withTest,
	})
}

// declarations returns the top-level names declared in a Go file.
func declarations(t *testing.T, path string) map[string]bool {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), path, nil, 0)
	require.NoError(t, err)
	names := make(map[string]bool)
	for name := range f.Scope.Objects {
		names[name] = true
	}
	return names
}

func TestCompilerGenerate(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		flags   string
	}{
		{"simple", "test", ""},
		{"digit", `\d+`, "g"},
		{"class", `[a-z0-9_]+?`, "i"},
		{"alternation", "a|b|", ""},
		{"groups", `(?<year>\d{4})-(?:\d{2})(?=x)\k<year>`, "u"},
		{"quotes", "\"`\\\\", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := newTestCompiler(t, tt.pattern, tt.flags, dir, true)
			require.NoError(t, c.Generate())

			names := declarations(t, filepath.Join(dir, "test.go"))
			for _, want := range []string{"TestPattern", "TestFlags", "TestLayoutConfig", "TestDiagram"} {
				assert.True(t, names[want], "missing %s", want)
			}

			testNames := declarations(t, c.TestFile())
			assert.True(t, testNames["TestTestDiagram"])
		})
	}
}

func TestGenerateWithoutTestFile(t *testing.T) {
	dir := t.TempDir()
	c := newTestCompiler(t, "a", "", dir, false)
	require.NoError(t, c.Generate())

	_, err := os.Stat(filepath.Join(dir, "test_test.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestRender(t *testing.T) {
	c := newTestCompiler(t, "a|b", "g", t.TempDir(), false)
	first, err := c.Render()
	require.NoError(t, err)
	second, err := c.Render()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	src := string(first)
	assert.True(t, strings.HasPrefix(src, "// Code generated by regraph for /a|b/g. DO NOT EDIT."), src)
	assert.Contains(t, src, `const TestPattern = "a|b"`)
	assert.Contains(t, src, `const TestFlags = "g"`)
	assert.Contains(t, src, "ast.KindPattern")
	assert.Contains(t, src, "func TestDiagram() *layout.Diagram")
}

func TestGenerateWithoutDiagram(t *testing.T) {
	c := New(Config{Name: "X", Package: "x", OutputFile: filepath.Join(t.TempDir(), "x.go")})
	assert.Error(t, c.Generate())
	_, err := c.Render()
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	c := newTestCompiler(t, `\w+@\w+`, "", dir, true)

	diff, err := c.Check()
	require.NoError(t, err)
	assert.Contains(t, diff, "+++ "+filepath.Join(dir, "test.go")+" (generated)")

	require.NoError(t, c.Generate())
	diff, err = c.Check()
	require.NoError(t, err)
	assert.Empty(t, diff)

	path := filepath.Join(dir, "test.go")
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, bytes.Replace(src, []byte("TestPattern ="), []byte("TestPattern  ="), 1), 0o644))
	diff, err = c.Check()
	require.NoError(t, err)
	assert.Contains(t, diff, "-const TestPattern  =")
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	l := NewLogger(true, logger)
	l.Section("Diagram")
	l.Log("Nodes: %d", 3)
	assert.True(t, l.Enabled())
	assert.Contains(t, buf.String(), "=== Diagram ===")
	assert.Contains(t, buf.String(), `msg="Nodes: 3"`)
	assert.Contains(t, buf.String(), "section=Diagram")

	buf.Reset()
	quiet := NewLogger(false, logger)
	quiet.Section("Diagram")
	quiet.Log("Nodes: %d", 3)
	assert.Empty(t, buf.String())
}

func TestVerboseCompilerLogs(t *testing.T) {
	var buf bytes.Buffer
	p, err := regexparser.Parse("a+", expr.Flags{})
	require.NoError(t, err)
	c := New(Config{
		Pattern: "a+",
		Name:    "A",
		AST:     p,
		Diagram: layout.New().Layout(p),
		Verbose: true,
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})
	require.NotNil(t, c.Analysis())
	assert.Contains(t, buf.String(), "Pattern Analysis")
	assert.Contains(t, buf.String(), "Features: Quantifiers")
}
