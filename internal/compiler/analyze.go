package compiler

import (
	"slices"
	"unicode/utf8"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/internal/parser"
)

// AnalysisResult describes the structure of a pattern without laying it out.
type AnalysisResult struct {
	// FeatureLabels are derived from pattern structure (sorted alphabetically)
	FeatureLabels []string `json:"feature_labels" yaml:"feature_labels"`

	// Counts holds the number of nodes of each kind.
	Counts map[string]int `json:"counts" yaml:"counts"`

	Nodes       int  `json:"nodes" yaml:"nodes"`
	Depth       int  `json:"depth" yaml:"depth"`
	HasCaptures bool `json:"has_captures" yaml:"has_captures"`
}

// AnalyzePattern parses pattern under flags and returns its labels. It
// returns an error if the expression is invalid.
func AnalyzePattern(pattern, flags string) (*AnalysisResult, error) {
	if err := parser.ValidateLiteral(pattern, flags); err != nil {
		return nil, err
	}
	f, err := expr.ParseFlags(flags)
	if err != nil {
		return nil, err
	}
	p, err := parser.Parse(pattern, f)
	if err != nil {
		return nil, err
	}
	return analyze(p, f), nil
}

func analyze(p *ast.Pattern, flags expr.Flags) *AnalysisResult {
	counts := ast.Count(p)
	res := &AnalysisResult{
		Counts:      make(map[string]int, len(counts)),
		Depth:       depth(p),
		HasCaptures: counts[ast.KindCapturingGroup] > 0,
	}
	for k, n := range counts {
		res.Counts[k.String()] = n
		res.Nodes += n
	}
	res.FeatureLabels = deriveFeatureLabels(p, flags, counts)
	return res
}

// deriveFeatureLabels extracts feature labels from the pattern structure.
// Labels are sorted alphabetically.
func deriveFeatureLabels(p *ast.Pattern, flags expr.Flags, counts map[ast.Kind]int) []string {
	var labels []string
	add := func(ok bool, label string) {
		if ok {
			labels = append(labels, label)
		}
	}

	var anchored, lookaround, wordBoundary, quantified, named, alternation bool
	ast.Walk(p, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Assertion:
			switch {
			case n.IsLookaround():
				lookaround = true
			case n.AssertKind == ast.AssertWord:
				wordBoundary = true
			default:
				anchored = true
			}
		case *ast.CapturingGroup:
			named = named || n.Name != ""
			alternation = alternation || len(n.Alternatives) > 1
		case *ast.Group:
			alternation = alternation || len(n.Alternatives) > 1
		case *ast.Pattern:
			alternation = alternation || len(n.Alternatives) > 1
		}
		if e, ok := n.(ast.Element); ok && e.Quant() != nil {
			quantified = true
		}
	})

	add(alternation, "Alternation")
	add(anchored, "Anchored")
	add(counts[ast.KindBackreference] > 0, "Backreference")
	add(counts[ast.KindCapturingGroup] > 0, "Captures")
	add(counts[ast.KindCharacterClass] > 0, "CharClass")
	add(lookaround, "Lookaround")
	add(utf8.RuneCountInString(p.Raw) != len(p.Raw), "Multibyte")
	add(named, "NamedCaptures")
	add(counts[ast.KindGroup] > 0, "NonCapturing")
	add(quantified, "Quantifiers")
	add(flags.UnicodeMode(), "Unicode")
	add(wordBoundary, "WordBoundary")

	if len(labels) == 0 {
		labels = append(labels, "Simple")
	}
	slices.Sort(labels)
	return labels
}

func depth(n ast.Node) int {
	d := 0
	for _, c := range ast.Children(n) {
		d = max(d, depth(c))
	}
	return d + 1
}
