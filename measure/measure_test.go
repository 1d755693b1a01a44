package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristic(t *testing.T) {
	tests := []struct {
		text     string
		fontSize float64
		want     Size
	}{
		{"", 16, Size{Width: 0, Height: 24}},
		{"abc", 16, Size{Width: 36, Height: 24}},
		{"Any digit", 12, Size{Width: 81, Height: 18}},
		{"é", 16, Size{Width: 12, Height: 24}},
		{"e\u0301", 16, Size{Width: 12, Height: 24}},
		{"👍🏽", 16, Size{Width: 12, Height: 24}},
	}

	for _, tt := range tests {
		got := Heuristic{}.MeasureText(tt.text, tt.fontSize, "")
		assert.Equal(t, tt.want, got, "MeasureText(%q, %v)", tt.text, tt.fontSize)
	}
}

func TestMeasureLines(t *testing.T) {
	got := MeasureLines(Heuristic{}, []string{"ab", "abcd", "a"}, 10, "")
	assert.Equal(t, Size{Width: 30, Height: 45}, got)

	assert.Equal(t, Size{}, MeasureLines(Heuristic{}, nil, 10, ""))
}

func TestFaceMeasurer(t *testing.T) {
	m := NewFaceMeasurer(nil)
	t.Cleanup(func() { require.NoError(t, m.Close()) })

	empty := m.MeasureText("", 16, FamilySans)
	assert.Zero(t, empty.Width)
	assert.Equal(t, 24.0, empty.Height)

	short := m.MeasureText("ab", 16, FamilySans)
	long := m.MeasureText("abab", 16, FamilySans)
	assert.Greater(t, short.Width, 0.0)
	assert.InDelta(t, 2*short.Width, long.Width, 1)

	// Glyphs in the monospace face all share one advance.
	narrow := m.MeasureText("iiii", 16, FamilyMono)
	wide := m.MeasureText("MMMM", 16, FamilyMono)
	assert.InDelta(t, narrow.Width, wide.Width, 0.01)

	// Proportional glyphs differ.
	assert.Less(t, m.MeasureText("iiii", 16, FamilySans).Width, m.MeasureText("MMMM", 16, FamilySans).Width)

	// Unknown families use the sans-serif face.
	assert.Equal(t, short, m.MeasureText("ab", 16, "fantasy"))
}

func TestFaceMeasurerFallback(t *testing.T) {
	m := NewFaceMeasurer(nil)
	got := m.MeasureText("abc", 0, FamilySans)
	assert.Equal(t, Heuristic{}.MeasureText("abc", 0, FamilySans), got)
}

func TestMeasurerImplementations(t *testing.T) {
	var _ Measurer = Heuristic{}
	var _ Measurer = (*FaceMeasurer)(nil)
}
