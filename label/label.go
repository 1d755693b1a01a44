// Package label classifies syntax tree nodes for display: the name shown
// above a node, the quantifier annotation shown below it and the text drawn
// inside leaf nodes.
package label

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KromDaniel/regraph/ast"
)

// Empty is the text shown for a leaf without content.
const Empty = "Empty"

// classText maps shorthand class and escape sources to readable phrases.
var classText = map[string]string{
	`.`:    "Any character",
	`\d`:   "Any digit",
	`\D`:   "Non-digit",
	`\w`:   "Any alphanumeric",
	`\W`:   "Non-alphanumeric",
	`\s`:   "White space",
	`\S`:   "Non-white space",
	`\t`:   "Horizontal tab",
	`\r`:   "Carriage return",
	`\n`:   "Linefeed",
	`\v`:   "Vertical tab",
	`\f`:   "Form-feed",
	`[\b]`: "Backspace",
	`\0`:   "NUL",
	`\cH`:  `\b Backspace`,
	`\cI`:  `\t Horizontal Tab`,
	`\cJ`:  `\n Line Feed`,
	`\cK`:  `\v Vertical Tab`,
	`\cL`:  `\f Form Feed`,
	`\cM`:  `\r Carriage Return`,
}

type assertionText struct {
	plain, negated string
}

var assertionNames = map[ast.AssertionKind]assertionText{
	ast.AssertBeginning:  {"Begins with", "Begins with"},
	ast.AssertEnd:        {"Ends with", "Ends with"},
	ast.AssertLookahead:  {"Followed by:", "Not followed by:"},
	ast.AssertLookbehind: {"Preceded by:", "Not preceded by:"},
	ast.AssertWord:       {"WordBoundary", "NonWordBoundary"},
}

// DisplayName returns the name decoration for n, if it has one.
func DisplayName(n ast.Node) (string, bool) {
	switch n := n.(type) {
	case *ast.CharacterClass:
		// Negated shorthands such as \D stay "One of"; only [^...] reads "None of".
		if n.Negate && n.Bracket {
			return "None of", true
		}
		return "One of", true
	case *ast.CharacterClassRange:
		return "Range", true
	case *ast.Group, *ast.CapturingGroup:
		return "Group", true
	case *ast.Assertion:
		text, ok := assertionNames[n.AssertKind]
		if !ok {
			return "", false
		}
		if n.Negate {
			return text.negated, true
		}
		return text.plain, true
	case *ast.Pattern, *ast.Alternative, *ast.Character, *ast.Backreference:
		return "", false
	}
	panic(fmt.Sprintf("label: unhandled node kind %T", n))
}

// QuantifierOf returns the quantifier shown for n. Only characters, groups
// and backreferences display one, even though the grammar allows quantifiers
// on other elements.
func QuantifierOf(n ast.Node) *ast.Quantifier {
	switch n := n.(type) {
	case *ast.Character:
		return n.Quantifier
	case *ast.Group:
		return n.Quantifier
	case *ast.CapturingGroup:
		return n.Quantifier
	case *ast.Backreference:
		return n.Quantifier
	case *ast.Pattern, *ast.Alternative, *ast.Assertion, *ast.CharacterClass, *ast.CharacterClassRange:
		return nil
	}
	panic(fmt.Sprintf("label: unhandled node kind %T", n))
}

// QuantifierLabel renders a quantifier annotation: " 3" for {3}, " 3 - 6"
// for {3,6} and " 3 - " for {3,}.
func QuantifierLabel(q *ast.Quantifier) string {
	if q.Min == q.Max {
		return fmt.Sprintf(" %d", q.Min)
	}
	max := ""
	if !q.IsUnbounded() {
		max = strconv.Itoa(q.Max)
	}
	return fmt.Sprintf(" %d - %s", q.Min, max)
}

// Label is the content text of a leaf node. Quoted is set when the text is
// literal source rather than a phrase from the shorthand table.
type Label struct {
	Text   string
	Quoted bool
}

// LeafLabel returns the content text of a leaf node. Nodes without leaf
// content return false.
func LeafLabel(n ast.Node) (Label, bool) {
	switch n := n.(type) {
	case *ast.Character:
		if n.Raw == "" {
			return Label{Text: Empty}, true
		}
		return Label{Text: `"` + n.Raw + `"`, Quoted: true}, true
	case *ast.CharacterClass:
		if n.Raw == "" {
			return Label{Text: Empty}, true
		}
		if phrase, ok := classText[n.Raw]; ok {
			return Label{Text: phrase}, true
		}
		return Label{Text: n.Raw, Quoted: true}, true
	case *ast.CharacterClassRange:
		lines := RangeLines([]Range{{Min: n.Min, Max: n.Max}})
		return Label{Text: lines[0].Text, Quoted: lines[0].Quotes > 0}, true
	case *ast.Backreference:
		return Label{Text: "Back reference #" + n.Ref()}, true
	case *ast.Pattern, *ast.Alternative, *ast.Group, *ast.CapturingGroup, *ast.Assertion:
		return Label{}, false
	}
	panic(fmt.Sprintf("label: unhandled node kind %T", n))
}

// ClassText looks up a single class key. An empty key is "Empty" and a key in
// the shorthand table maps to its phrase; both report ok. Any other key is
// returned quoted with ok unset.
func ClassText(key string) (text string, ok bool) {
	if key == "" {
		return Empty, true
	}
	if phrase, hit := classText[key]; hit {
		return phrase, true
	}
	return `"` + key + `"`, false
}

// mergeBelow is the code point below which single values are collected into
// one combined line.
const mergeBelow = 10

// Range is one member of a bracketed class. Single characters have Min equal
// to Max; Shorthand marks an escape such as \d that has no code point.
type Range struct {
	Min, Max  ast.Endpoint
	Shorthand bool
}

// Single reports whether r covers exactly one value.
func (r Range) Single() bool {
	return r.Shorthand || r.Min.Value == r.Max.Value
}

// Line is one line of a class label. Quotes counts the quoted literals on the
// line, each of which gets extra padding when measured.
type Line struct {
	Text   string
	Quotes int
}

// Members flattens the elements of a bracketed class into ranges. Nested
// classes contribute their source text as a single shorthand member.
func Members(class *ast.CharacterClass) []Range {
	members := make([]Range, 0, len(class.Elements))
	for _, e := range class.Elements {
		switch e := e.(type) {
		case *ast.Character:
			ep := ast.Endpoint{Value: e.Value, Raw: e.Raw}
			members = append(members, Range{Min: ep, Max: ep})
		case *ast.CharacterClassRange:
			members = append(members, Range{Min: e.Min, Max: e.Max})
		case *ast.CharacterClass:
			ep := ast.Endpoint{Value: -1, Raw: e.Raw}
			members = append(members, Range{Min: ep, Max: ep, Shorthand: true})
		}
	}
	return members
}

// RangeLines builds the label lines for a set of class members, one per
// member, except that single values below code point 10 are merged into one
// trailing quoted line.
func RangeLines(ranges []Range) []Line {
	var (
		lines  []Line
		merged strings.Builder
		seen   = make(map[rune]bool)
	)
	for _, r := range ranges {
		if !r.Shorthand && r.Min.Value < mergeBelow {
			if r.Single() {
				if !seen[r.Min.Value] {
					seen[r.Min.Value] = true
					merged.WriteString(r.Min.Raw)
				}
				continue
			}
			lines = append(lines, Line{Text: `"` + r.Min.Raw + `" - "` + r.Max.Raw + `"`, Quotes: 2})
			continue
		}

		from, fromHit := ClassText(r.Min.Raw)
		if r.Single() {
			lines = append(lines, Line{Text: from, Quotes: quotes(fromHit)})
			continue
		}
		to, toHit := ClassText(r.Max.Raw)
		lines = append(lines, Line{Text: from + " - " + to, Quotes: quotes(fromHit) + quotes(toHit)})
	}
	if len(seen) > 0 {
		lines = append(lines, Line{Text: `"` + merged.String() + `"`, Quotes: 1})
	}
	return lines
}

func quotes(hit bool) int {
	if hit {
		return 0
	}
	return 1
}
