package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Check renders the output files in memory and compares them with the files
// on disk. It returns a unified diff, empty when everything is up to date.
func (c *Compiler) Check() (string, error) {
	src, err := c.Render()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := diffFile(&sb, c.config.OutputFile, src); err != nil {
		return "", err
	}

	if c.config.GenerateTestFile {
		testSrc, err := render(c.buildTestFile())
		if err != nil {
			return "", err
		}
		if err := diffFile(&sb, c.TestFile(), testSrc); err != nil {
			return "", err
		}
	}
	if sb.Len() > 0 {
		c.logger.Log("Generated code differs from disk")
	}
	return sb.String(), nil
}

func diffFile(sb *strings.Builder, path string, want []byte) error {
	have, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if string(have) == string(want) {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(have)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", path, err)
	}
	sb.WriteString(diff)
	return nil
}
