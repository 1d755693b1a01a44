package highlight

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Change replaces the runes [From, To) of a document with Insert.
type Change struct {
	From   int    `json:"from" yaml:"from"`
	To     int    `json:"to" yaml:"to"`
	Insert string `json:"insert,omitempty" yaml:"insert,omitempty"`
}

func (c Change) inserted() int { return utf8.RuneCountInString(c.Insert) }

// ChangeSet is a group of non-overlapping changes, all expressed in the
// coordinates of the document before any of them is applied.
type ChangeSet struct {
	changes []Change
}

// NewChangeSet sorts and validates changes.
func NewChangeSet(changes ...Change) (ChangeSet, error) {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b Change) int { return a.From - b.From })
	for i, c := range sorted {
		if c.From < 0 || c.To < c.From {
			return ChangeSet{}, fmt.Errorf("invalid change [%d, %d)", c.From, c.To)
		}
		if i > 0 && c.From < sorted[i-1].To {
			return ChangeSet{}, fmt.Errorf("change [%d, %d) overlaps [%d, %d)", c.From, c.To, sorted[i-1].From, sorted[i-1].To)
		}
	}
	return ChangeSet{changes: sorted}, nil
}

// Empty reports whether the set has no changes.
func (cs ChangeSet) Empty() bool { return len(cs.changes) == 0 }

// Changes returns the changes in document order.
func (cs ChangeSet) Changes() []Change { return slices.Clone(cs.changes) }

// Apply returns doc with every change applied.
func (cs ChangeSet) Apply(doc string) (string, error) {
	runes := []rune(doc)
	var b strings.Builder
	prev := 0
	for _, c := range cs.changes {
		if c.To > len(runes) {
			return "", fmt.Errorf("change [%d, %d) beyond document length %d", c.From, c.To, len(runes))
		}
		b.WriteString(string(runes[prev:c.From]))
		b.WriteString(c.Insert)
		prev = c.To
	}
	b.WriteString(string(runes[prev:]))
	return b.String(), nil
}

// MapPos maps a position in the old document to the new one. A position on
// the boundary of a replaced range sticks to that boundary; one strictly
// inside a replaced range, or at the point of a pure insertion, moves to the
// start of the replacement when assoc is negative and to its end otherwise.
func (cs ChangeSet) MapPos(pos, assoc int) int {
	delta := 0
	for _, c := range cs.changes {
		if pos < c.From {
			break
		}
		start := c.From + delta
		n := c.inserted()
		switch {
		case c.From == c.To && pos == c.From:
			if assoc < 0 {
				return start
			}
			return start + n
		case pos == c.From:
			return start
		case pos == c.To:
			return start + n
		case pos < c.To:
			if assoc < 0 {
				return start
			}
			return start + n
		}
		delta += n - (c.To - c.From)
	}
	return pos + delta
}
