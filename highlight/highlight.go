// Package highlight keeps the set of matched ranges for a text document in
// sync with edits and with the current expression.
package highlight

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/KromDaniel/regraph/matcher"
)

// Range is a half-open rune range [From, To).
type Range struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// MarkSet is an ordered set of highlighted ranges.
type MarkSet struct {
	ranges []Range
}

// NewMarkSet builds a mark set from ranges in any order. Empty and inverted
// ranges are dropped.
func NewMarkSet(ranges ...Range) MarkSet {
	var s MarkSet
	for _, r := range ranges {
		if r.From < r.To {
			s.ranges = append(s.ranges, r)
		}
	}
	slices.SortStableFunc(s.ranges, func(a, b Range) int { return a.From - b.From })
	return s
}

// Ranges returns the marks in document order.
func (s MarkSet) Ranges() []Range { return slices.Clone(s.ranges) }

// Len returns the number of marks.
func (s MarkSet) Len() int { return len(s.ranges) }

// Map moves every mark across cs. The start of a mark sticks to the text
// after it and the end to the text before it, so insertions at either edge
// stay outside. Marks whose text was deleted are dropped.
func (s MarkSet) Map(cs ChangeSet) MarkSet {
	if cs.Empty() {
		return s
	}
	var out MarkSet
	for _, r := range s.ranges {
		from, to := cs.MapPos(r.From, 1), cs.MapPos(r.To, -1)
		if from >= to {
			continue
		}
		out.ranges = append(out.ranges, Range{From: from, To: to})
	}
	return out
}

// Collect builds a mark set from every non-empty match of c.
func Collect(c *matcher.Cursor) (MarkSet, error) {
	var s MarkSet
	for c.Next() {
		m := c.Match()
		if m.Empty() {
			continue
		}
		s.ranges = append(s.ranges, Range{From: m.From, To: m.To})
	}
	if err := c.Err(); err != nil {
		return MarkSet{}, err
	}
	return s, nil
}

// Effect is an instruction carried by a transaction.
type Effect interface {
	effect()
}

// SearchEffect asks the highlighter to rebuild its marks from every match of
// Matcher in the transaction's document. A nil Matcher clears the marks.
type SearchEffect struct {
	Matcher *matcher.Matcher
}

func (SearchEffect) effect() {}

// Transaction is one update to the document. Doc is the document after
// Changes have been applied.
type Transaction struct {
	Doc     string
	Changes ChangeSet
	Effects []Effect
}

// Highlighter owns the marks of one document.
type Highlighter struct {
	marks  MarkSet
	logger *slog.Logger
}

// New returns a highlighter with no marks. A nil logger discards output.
func New(logger *slog.Logger) *Highlighter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Highlighter{logger: logger}
}

// Marks returns the current marks.
func (h *Highlighter) Marks() MarkSet { return h.marks }

// Update maps the existing marks across the transaction's changes, then
// rebuilds them for each search effect. On error the mapped marks are kept.
func (h *Highlighter) Update(tr Transaction) (MarkSet, error) {
	h.marks = h.marks.Map(tr.Changes)

	for _, eff := range tr.Effects {
		search, ok := eff.(SearchEffect)
		if !ok {
			continue
		}
		if search.Matcher == nil {
			h.marks = MarkSet{}
			continue
		}
		marks, err := Collect(search.Matcher.Scan(tr.Doc))
		if err != nil {
			return h.marks, fmt.Errorf("highlight %s: %w", search.Matcher.Expression().Literal(), err)
		}
		h.marks = marks
		h.logger.Debug("highlight rebuilt",
			"expression", search.Matcher.Expression().Literal(),
			"marks", marks.Len())
	}
	return h.marks, nil
}
