// Package matcher runs an expression against text with ECMAScript semantics.
package matcher

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/KromDaniel/regraph/expr"
)

// DefaultTimeout bounds a single match attempt.
const DefaultTimeout = 2 * time.Second

// Matcher is a compiled expression. Offsets reported by a Matcher count runes,
// not bytes.
type Matcher struct {
	expression expr.Expression
	re         *regexp2.Regexp
}

// Option configures Compile.
type Option func(*regexp2.Regexp)

// WithTimeout sets the per-attempt timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(re *regexp2.Regexp) {
		if d <= 0 {
			re.MatchTimeout = regexp2.DefaultMatchTimeout
			return
		}
		re.MatchTimeout = d
	}
}

// Compile compiles e. Sticky matching is emulated by the cursor; the remaining
// flags map onto regexp2 options.
func Compile(e expr.Expression, opts ...Option) (*Matcher, error) {
	re, err := regexp2.Compile(e.Source, options(e.Flags))
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", e.Literal(), err)
	}
	re.MatchTimeout = DefaultTimeout
	for _, opt := range opts {
		opt(re)
	}
	return &Matcher{expression: e, re: re}, nil
}

func options(f expr.Flags) regexp2.RegexOptions {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if f.Has(expr.FlagIgnoreCase) {
		opts |= regexp2.IgnoreCase
	}
	if f.Has(expr.FlagMultiline) {
		opts |= regexp2.Multiline
	}
	if f.Has(expr.FlagDotAll) {
		opts |= regexp2.Singleline
	}
	if f.UnicodeMode() {
		opts |= regexp2.Unicode
	}
	return opts
}

// Expression returns the compiled expression.
func (m *Matcher) Expression() expr.Expression {
	return m.expression
}

// Match is one match. From and To are rune offsets, To exclusive.
type Match struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Text   string  `json:"text"`
	Groups []Group `json:"groups,omitempty"`
}

// Empty reports whether the match has zero length.
func (m Match) Empty() bool { return m.From == m.To }

// Group is a numbered or named capture of a match.
type Group struct {
	Name    string `json:"name"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// Cursor enumerates matches over one input.
//
//	c := m.Cursor(input)
//	for c.Next() {
//		use(c.Match())
//	}
//	if err := c.Err(); err != nil { ... }
type Cursor struct {
	re     *regexp2.Regexp
	input  string
	all    bool
	sticky bool

	started bool
	done    bool
	last    *regexp2.Match
	match   Match
	err     error
}

// Cursor enumerates matches the way the expression's flags ask for: every
// match with the global flag, otherwise at most the first one.
func (m *Matcher) Cursor(input string) *Cursor {
	return m.newCursor(input, m.expression.Flags.Global())
}

// Scan enumerates every match regardless of the global flag.
func (m *Matcher) Scan(input string) *Cursor {
	return m.newCursor(input, true)
}

func (m *Matcher) newCursor(input string, all bool) *Cursor {
	return &Cursor{
		re:     m.re,
		input:  input,
		all:    all,
		sticky: m.expression.Flags.Has(expr.FlagSticky),
	}
}

// Next advances to the next match.
func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if c.started && !c.all {
		c.done = true
		return false
	}

	var (
		next *regexp2.Match
		err  error
	)
	if !c.started {
		next, err = c.re.FindStringMatch(c.input)
	} else {
		next, err = c.re.FindNextMatch(c.last)
	}
	c.started = true
	if err != nil {
		c.err = err
		c.done = true
		return false
	}
	if next == nil || c.sticky && next.Index != c.stickyStart() {
		c.done = true
		return false
	}
	c.last = next
	c.match = convert(next)
	return true
}

// stickyStart is where a sticky match has to begin: the end of the previous
// match, or zero.
func (c *Cursor) stickyStart() int {
	if c.last == nil {
		return 0
	}
	return c.last.Index + c.last.Length
}

// Match returns the current match.
func (c *Cursor) Match() Match {
	return c.match
}

// Err returns the error that stopped the cursor, if any.
func (c *Cursor) Err() error {
	return c.err
}

func convert(m *regexp2.Match) Match {
	match := Match{From: m.Index, To: m.Index + m.Length, Text: m.String()}
	groups := m.Groups()
	for _, g := range groups[1:] {
		match.Groups = append(match.Groups, Group{
			Name:    g.Name,
			From:    g.Index,
			To:      g.Index + g.Length,
			Text:    g.String(),
			Matched: len(g.Captures) > 0,
		})
	}
	return match
}

// All collects the matches of m.Cursor(input).
func (m *Matcher) All(input string) ([]Match, error) {
	var matches []Match
	c := m.Cursor(input)
	for c.Next() {
		matches = append(matches, c.Match())
	}
	return matches, c.Err()
}

// Test reports whether the expression matches input: at least one match with
// the global flag, otherwise a successful first match attempt.
func (m *Matcher) Test(input string) (bool, error) {
	c := m.Cursor(input)
	ok := c.Next()
	return ok, c.Err()
}
