package regraph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOptionsValidate(t *testing.T) {
	valid := GenerateOptions{Name: "Email", OutputFile: "email.go", Package: "gen"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*GenerateOptions)
	}{
		{"empty name", func(o *GenerateOptions) { o.Name = "" }},
		{"bad name", func(o *GenerateOptions) { o.Name = "e-mail" }},
		{"no output", func(o *GenerateOptions) { o.OutputFile = "" }},
		{"no package", func(o *GenerateOptions) { o.Package = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.modify(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestGenerateAndCheck(t *testing.T) {
	dir := t.TempDir()
	opts := GenerateOptions{
		Pattern:          `[\w.+-]+@[\w.-]+\.[\w.-]+`,
		Flags:            "ig",
		Name:             "Email",
		OutputFile:       filepath.Join(dir, "email.go"),
		Package:          "generated",
		GenerateTestFile: true,
	}
	require.NoError(t, Generate(opts))

	src, err := os.ReadFile(opts.OutputFile)
	require.NoError(t, err)
	// Flags are written in canonical order.
	assert.Contains(t, string(src), `const EmailFlags = "gi"`)
	assert.FileExists(t, filepath.Join(dir, "email_test.go"))

	diff, err := CheckGenerated(opts)
	require.NoError(t, err)
	assert.Empty(t, diff)

	opts.Pattern = `\w+@\w+`
	diff, err = CheckGenerated(opts)
	require.NoError(t, err)
	assert.NotEmpty(t, diff)
}

func TestGenerateInvalidExpression(t *testing.T) {
	err := Generate(GenerateOptions{
		Pattern:    "(a",
		Name:       "Bad",
		OutputFile: filepath.Join(t.TempDir(), "bad.go"),
		Package:    "generated",
	})
	assert.ErrorContains(t, err, "failed to parse pattern")
}

func TestAnalyze(t *testing.T) {
	res, err := Analyze(`(?<d>\d+)|x`, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alternation", "Captures", "CharClass", "NamedCaptures", "Quantifiers"}, res.FeatureLabels)
}
