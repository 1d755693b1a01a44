package matcher

import (
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regraph/expr"
)

func compile(t *testing.T, source, flags string) *Matcher {
	t.Helper()
	m, err := Compile(expr.Expression{Source: source, Flags: expr.MustParseFlags(flags)})
	require.NoError(t, err)
	return m
}

func spans(matches []Match) [][2]int {
	var out [][2]int
	for _, m := range matches {
		out = append(out, [2]int{m.From, m.To})
	}
	return out
}

func TestAll(t *testing.T) {
	tests := []struct {
		source string
		flags  string
		input  string
		want   [][2]int
	}{
		{"abc", "g", "abcabc", [][2]int{{0, 3}, {3, 6}}},
		{"abc", "", "abcabc", [][2]int{{0, 3}}},
		{"^abc$", "", "xabc", nil},
		{"^abc$", "", "abc", [][2]int{{0, 3}}},
		{"ABC", "gi", "abc ABC", [][2]int{{0, 3}, {4, 7}}},
		{"^b", "gm", "a\nb\nb", [][2]int{{2, 3}, {4, 5}}},
		{"llo", "g", "héllo", [][2]int{{2, 5}}},
		{"a", "gy", "aab", [][2]int{{0, 1}, {1, 2}}},
		{"b", "y", "ab", nil},
		{"a.c", "gs", "a\nc", [][2]int{{0, 3}}},
		{"a.c", "g", "a\nc", nil},
		{"(?<=\\$)\\d+", "g", "$12 34", [][2]int{{1, 3}}},
		{"\\u{1F600}", "u", "x😀", [][2]int{{1, 2}}},
	}

	for _, tt := range tests {
		m := compile(t, tt.source, tt.flags)
		got, err := m.All(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, spans(got), "/%s/%s on %q", tt.source, tt.flags, tt.input)
	}
}

func TestTest(t *testing.T) {
	tests := []struct {
		source string
		flags  string
		input  string
		want   bool
	}{
		{"abc", "g", "abcabc", true},
		{"^abc$", "", "xabc", false},
		{"^abc$", "", "abc", true},
		{`\d+`, "", "no digits", false},
		{`\d+`, "g", "2", true},
	}

	for _, tt := range tests {
		got, err := compile(t, tt.source, tt.flags).Test(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "/%s/%s on %q", tt.source, tt.flags, tt.input)
	}
}

func TestScanIgnoresGlobal(t *testing.T) {
	m := compile(t, "a", "")
	var got []Match
	c := m.Scan("banana")
	for c.Next() {
		got = append(got, c.Match())
	}
	require.NoError(t, c.Err())
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}, {5, 6}}, spans(got))
}

func TestGroups(t *testing.T) {
	m := compile(t, `(?<year>\d{4})-(\d{2})(x)?`, "")
	matches, err := m.All("on 2024-05")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, "2024-05", match.Text)
	assert.Equal(t, 3, match.From)

	byName := make(map[string]Group)
	for _, g := range match.Groups {
		byName[g.Name] = g
	}
	assert.Equal(t, Group{Name: "year", From: 3, To: 7, Text: "2024", Matched: true}, byName["year"])
	assert.Equal(t, "05", byName["1"].Text)
	assert.False(t, byName["2"].Matched)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		flags string
		want  regexp2.RegexOptions
	}{
		{"", regexp2.ECMAScript},
		{"gy", regexp2.ECMAScript},
		{"i", regexp2.ECMAScript | regexp2.IgnoreCase},
		{"ms", regexp2.ECMAScript | regexp2.Multiline | regexp2.Singleline},
		{"u", regexp2.ECMAScript | regexp2.Unicode},
		{"v", regexp2.ECMAScript | regexp2.Unicode},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, options(expr.MustParseFlags(tt.flags)), tt.flags)
	}
}

func TestCompileError(t *testing.T) {
	_, err := Compile(expr.Expression{Source: "(a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/(a/")
}

func TestCursorStopsAfterEnd(t *testing.T) {
	c := compile(t, "a", "").Cursor("aa")
	assert.True(t, c.Next())
	assert.False(t, c.Next())
	assert.False(t, c.Next())
	assert.NoError(t, c.Err())
}

func TestWithTimeout(t *testing.T) {
	m, err := Compile(expr.Expression{Source: "a"}, WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Second, m.re.MatchTimeout)

	m, err = Compile(expr.Expression{Source: "a"}, WithTimeout(0))
	require.NoError(t, err)
	assert.Greater(t, m.re.MatchTimeout, time.Hour)
	assert.Equal(t, "/a/", m.Expression().Literal())
}
