package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KromDaniel/regraph/expr"
	"github.com/KromDaniel/regraph/matcher"
)

func changes(t *testing.T, cs ...Change) ChangeSet {
	t.Helper()
	set, err := NewChangeSet(cs...)
	require.NoError(t, err)
	return set
}

func compile(t *testing.T, source, flags string) *matcher.Matcher {
	t.Helper()
	m, err := matcher.Compile(expr.Expression{Source: source, Flags: expr.MustParseFlags(flags)})
	require.NoError(t, err)
	return m
}

func TestMapPos(t *testing.T) {
	insert := changes(t, Change{From: 2, To: 2, Insert: "xyz"})
	replace := changes(t, Change{From: 2, To: 5, Insert: "q"})
	multi := changes(t, Change{From: 6, To: 8}, Change{From: 0, To: 0, Insert: "ab"})

	tests := []struct {
		name  string
		cs    ChangeSet
		pos   int
		assoc int
		want  int
	}{
		{"before insertion", insert, 1, 1, 1},
		{"at insertion, before", insert, 2, -1, 2},
		{"at insertion, after", insert, 2, 1, 5},
		{"after insertion", insert, 4, 1, 7},
		{"start of replacement", replace, 2, 1, 2},
		{"end of replacement", replace, 5, -1, 3},
		{"inside replacement, before", replace, 3, -1, 2},
		{"inside replacement, after", replace, 3, 1, 3},
		{"after replacement", replace, 7, 1, 5},
		{"between changes", multi, 4, 1, 6},
		{"after both changes", multi, 10, 1, 10},
		{"inside deletion", multi, 7, 1, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cs.MapPos(tt.pos, tt.assoc))
		})
	}
}

func TestNewChangeSetErrors(t *testing.T) {
	_, err := NewChangeSet(Change{From: 3, To: 1})
	assert.Error(t, err)

	_, err = NewChangeSet(Change{From: 0, To: 4}, Change{From: 2, To: 6})
	assert.Error(t, err)

	_, err = NewChangeSet(Change{From: -1, To: 0})
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	cs := changes(t, Change{From: 5, To: 6, Insert: "!"}, Change{From: 0, To: 1, Insert: "J"})
	got, err := cs.Apply("héllo world")
	require.NoError(t, err)
	assert.Equal(t, "Jéllo!world", got)

	_, err = changes(t, Change{From: 0, To: 50}).Apply("short")
	assert.Error(t, err)
}

func TestMarkSetMap(t *testing.T) {
	marks := MarkSet{ranges: []Range{{From: 0, To: 3}, {From: 5, To: 8}, {From: 10, To: 12}}}

	// Insert at the start of the second mark and delete the third entirely.
	cs := changes(t,
		Change{From: 5, To: 5, Insert: "__"},
		Change{From: 9, To: 13},
	)
	got := marks.Map(cs)
	assert.Equal(t, []Range{{From: 0, To: 3}, {From: 7, To: 10}}, got.Ranges())
}

func TestMarkSetMapInsertAtEnd(t *testing.T) {
	marks := MarkSet{ranges: []Range{{From: 2, To: 4}}}
	got := marks.Map(changes(t, Change{From: 4, To: 4, Insert: "zz"}))
	assert.Equal(t, []Range{{From: 2, To: 4}}, got.Ranges())
}

func TestHighlighterUpdate(t *testing.T) {
	h := New(nil)
	doc := "abc xabc abc"

	marks, err := h.Update(Transaction{Doc: doc, Effects: []Effect{SearchEffect{Matcher: compile(t, "abc", "")}}})
	require.NoError(t, err)
	// Highlighting marks every match, with or without the global flag.
	assert.Equal(t, []Range{{0, 3}, {5, 8}, {9, 12}}, marks.Ranges())

	// Typing at the front shifts the marks without a new search.
	cs := changes(t, Change{From: 0, To: 0, Insert: ">> "})
	doc, err = cs.Apply(doc)
	require.NoError(t, err)
	marks, err = h.Update(Transaction{Doc: doc, Changes: cs})
	require.NoError(t, err)
	assert.Equal(t, []Range{{3, 6}, {8, 11}, {12, 15}}, marks.Ranges())

	// A new search replaces the mapped marks.
	marks, err = h.Update(Transaction{Doc: doc, Effects: []Effect{SearchEffect{Matcher: compile(t, "^>+", "")}}})
	require.NoError(t, err)
	assert.Equal(t, []Range{{0, 2}}, marks.Ranges())
	assert.Equal(t, marks, h.Marks())

	// A nil matcher clears.
	marks, err = h.Update(Transaction{Doc: doc, Effects: []Effect{SearchEffect{}}})
	require.NoError(t, err)
	assert.Zero(t, marks.Len())
}

func TestCollectSkipsEmptyMatches(t *testing.T) {
	marks, err := Collect(compile(t, "a*", "g").Scan("baab"))
	require.NoError(t, err)
	assert.Equal(t, []Range{{1, 3}}, marks.Ranges())
}

func TestNewMarkSet(t *testing.T) {
	s := NewMarkSet(Range{From: 5, To: 7}, Range{From: 3, To: 3}, Range{From: 0, To: 2}, Range{From: 9, To: 8})
	assert.Equal(t, []Range{{From: 0, To: 2}, {From: 5, To: 7}}, s.Ranges())
	assert.Equal(t, 0, NewMarkSet().Len())
}
