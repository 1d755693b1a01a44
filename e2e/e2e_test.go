package e2e

import (
	"encoding/json"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regraph/pkg/regraph"
	"github.com/KromDaniel/regraph/testcase"
)

// TestCase is a pattern with inputs and whether each of them should match.
type TestCase struct {
	Name    string  `json:"name"`
	Pattern string  `json:"pattern"`
	Flags   string  `json:"flags"`
	Inputs  []Input `json:"inputs"`
}

type Input struct {
	Input string `json:"input"`
	Match bool   `json:"match"`
}

func loadCases(t *testing.T) []TestCase {
	t.Helper()
	data, err := os.ReadFile("testdata.json")
	require.NoError(t, err, "read test data")

	var cases []TestCase
	require.NoError(t, json.Unmarshal(data, &cases), "parse test data")
	require.NotEmpty(t, cases, "no test cases found in testdata.json")
	return cases
}

// TestE2E generates code for every pattern, checks that the output parses
// and is reproducible, and runs the inputs as a session.
func TestE2E(t *testing.T) {
	cases := loadCases(t)
	t.Logf("Running %d e2e test cases", len(cases))
	tempDir := t.TempDir()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			caseDir := filepath.Join(tempDir, tc.Name)
			require.NoError(t, os.MkdirAll(caseDir, 0755))

			outputFile := filepath.Join(caseDir, strings.ToLower(tc.Name)+".go")
			opts := regraph.GenerateOptions{
				Pattern:          tc.Pattern,
				Flags:            tc.Flags,
				Name:             tc.Name,
				OutputFile:       outputFile,
				Package:          "generated",
				GenerateTestFile: true,
			}
			require.NoError(t, regraph.Generate(opts), "generate %s", tc.Pattern)

			testFile := strings.TrimSuffix(outputFile, ".go") + "_test.go"
			for _, path := range []string{outputFile, testFile} {
				_, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.AllErrors)
				require.NoError(t, err, "generated file %s does not parse", path)
			}

			diff, err := regraph.CheckGenerated(opts)
			require.NoError(t, err)
			assert.Empty(t, diff, "regenerating changed the output")

			session := &regraph.Session{Pattern: tc.Pattern, Flags: tc.Flags}
			for i, in := range tc.Inputs {
				session.Testcases = append(session.Testcases, testcase.Testcase{
					ID:    fmt.Sprint(i),
					Input: in.Input,
				})
			}
			report, err := session.Run(regraph.Options{})
			require.NoError(t, err)
			require.True(t, report.Result.ValidExpression, "%v", report.Result.Err())
			require.Len(t, report.Testcases, len(tc.Inputs))
			for i, got := range report.Testcases {
				assert.Equal(t, tc.Inputs[i].Match, !got.Failed(), "input %q", tc.Inputs[i].Input)
			}
		})
	}
}

// TestE2EGeneratedTests compiles and runs the generated tests in a scratch
// module. It needs the go tool and module downloads, so it only runs when
// REGRAPH_E2E_GO_TEST is set.
func TestE2EGeneratedTests(t *testing.T) {
	if os.Getenv("REGRAPH_E2E_GO_TEST") == "" {
		t.Skip("set REGRAPH_E2E_GO_TEST=1 to run the generated tests")
	}
	root, err := filepath.Abs("..")
	require.NoError(t, err)

	for _, tc := range loadCases(t) {
		t.Run(tc.Name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, regraph.Generate(regraph.GenerateOptions{
				Pattern:          tc.Pattern,
				Flags:            tc.Flags,
				Name:             tc.Name,
				OutputFile:       filepath.Join(dir, "diagram.go"),
				Package:          "generated",
				GenerateTestFile: true,
			}))

			for _, args := range [][]string{
				{"mod", "init", "testmodule"},
				{"mod", "edit", "-replace", "github.com/KromDaniel/regraph=" + root},
				{"mod", "tidy"},
			} {
				cmd := exec.Command("go", args...)
				cmd.Dir = dir
				out, err := cmd.CombinedOutput()
				require.NoError(t, err, "go %s:\n%s", strings.Join(args, " "), out)
			}

			cmd := exec.Command("go", "test", "-v")
			cmd.Dir = dir
			out, err := cmd.CombinedOutput()
			require.NoError(t, err, "generated tests failed:\n%s", out)

			count := countTests(string(out))
			require.NotZero(t, count, "no tests were executed:\n%s", out)
			t.Logf("✓ Ran %d generated tests", count)
		})
	}
}

// countTests counts the tests executed, parsing "=== RUN" lines of verbose
// output.
func countTests(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "=== RUN") {
			count++
		}
	}
	return count
}
