package layout

import (
	"fmt"

	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/label"
	"github.com/KromDaniel/regraph/measure"
)

// NodeSize is the pass-one result for a node. Box includes the name and
// quantifier decoration around Content.
type NodeSize struct {
	Box     measure.Size `json:"box"`
	Content measure.Size `json:"content"`
}

// Sizes maps every node of one pattern to its size. Branch groups are keyed
// by their *ast.Alternative.
type Sizes map[ast.Node]NodeSize

func (s Sizes) get(n ast.Node) measure.Size {
	size, ok := s[n]
	if !ok {
		// Children are always measured before their parent.
		panic(fmt.Sprintf("layout: %s %q used before it was measured", n.Kind(), n.Text()))
	}
	return size.Box
}

// Measure is pass one. It returns a fresh map on every call.
func (e *Engine) Measure(pattern *ast.Pattern) Sizes {
	sizes := make(Sizes)
	if pattern == nil {
		return sizes
	}
	ast.Walk(pattern, func(n ast.Node) {
		content := e.floor(e.contentSize(n, sizes))
		sizes[n] = NodeSize{Box: e.boxSize(n, content), Content: content}
	})
	return sizes
}

func (e *Engine) contentSize(n ast.Node, sizes Sizes) measure.Size {
	switch n := n.(type) {
	case *ast.Alternative:
		return e.sequenceSize(n.Elements, sizes)
	case *ast.Pattern:
		return e.choiceSize(n.Alternatives, sizes)
	case *ast.Group:
		return e.choiceSize(n.Alternatives, sizes)
	case *ast.CapturingGroup:
		return e.choiceSize(n.Alternatives, sizes)
	case *ast.Assertion:
		if n.IsLookaround() {
			return e.choiceSize(n.Alternatives, sizes)
		}
		// Boundary assertions are described by their name alone.
		return measure.Size{}
	case *ast.Character, *ast.CharacterClass, *ast.CharacterClassRange, *ast.Backreference:
		return e.textSize(leafLines(n))
	}
	panic(fmt.Sprintf("layout: unhandled node kind %T", n))
}

// sequenceSize lays children side by side.
func (e *Engine) sequenceSize(elements []ast.Element, sizes Sizes) measure.Size {
	var size measure.Size
	for _, el := range elements {
		box := sizes.get(el)
		size.Width += box.Width
		size.Height = max(size.Height, box.Height)
	}
	if len(elements) > 1 {
		size.Width += float64(len(elements)-1) * e.config.NodeMarginHorizontal
	}
	return size
}

// choiceSize stacks branches. A single branch needs no choice padding.
func (e *Engine) choiceSize(alts []*ast.Alternative, sizes Sizes) measure.Size {
	if len(alts) == 1 {
		return sizes.get(alts[0])
	}
	var size measure.Size
	for _, alt := range alts {
		box := sizes.get(alt)
		size.Width = max(size.Width, box.Width)
		size.Height += box.Height
	}
	if len(alts) > 1 {
		size.Height += float64(len(alts)-1) * e.config.NodeMarginVertical
	}
	size.Width += 2 * e.config.ChoicePaddingHorizontal
	size.Height += 2 * e.config.ChoicePaddingVertical
	return size
}

// textSize measures label lines plus node padding. Every quoted literal on a
// line widens that line by two quote paddings.
func (e *Engine) textSize(lines []label.Line) measure.Size {
	var size measure.Size
	for _, line := range lines {
		s := e.measurer.MeasureText(line.Text, e.config.TextFontSize, e.config.FontFamily)
		size.Width = max(size.Width, s.Width+float64(line.Quotes)*e.config.QuotePadding*2)
		size.Height += s.Height
	}
	return measure.Size{
		Width:  size.Width + 2*e.config.NodePaddingHorizontal,
		Height: size.Height + 2*e.config.NodePaddingVertical,
	}
}

func (e *Engine) floor(s measure.Size) measure.Size {
	return measure.Size{
		Width:  max(s.Width, e.config.NodeMinWidth),
		Height: max(s.Height, e.config.NodeMinHeight),
	}
}

// boxSize adds decoration. Space for the taller label is reserved both above
// and below the content, even when only one label is present.
func (e *Engine) boxSize(n ast.Node, content measure.Size) measure.Size {
	name := e.nameSize(n)
	quant := e.quantifierSize(n)
	return measure.Size{
		Width:  max(content.Width, name.Width, quant.Width),
		Height: content.Height + 2*max(name.Height, quant.Height),
	}
}

func (e *Engine) nameSize(n ast.Node) measure.Size {
	name, ok := label.DisplayName(n)
	if !ok {
		return measure.Size{}
	}
	return measure.Size{
		Width:  e.textSize([]label.Line{{Text: name}}).Width,
		Height: e.config.NameHeight,
	}
}

func (e *Engine) quantifierSize(n ast.Node) measure.Size {
	q := label.QuantifierOf(n)
	if q == nil {
		return measure.Size{}
	}
	text := e.measurer.MeasureText(label.QuantifierLabel(q), e.config.QuantifierFontSize, e.config.FontFamily)
	width := text.Width + e.config.IconSize
	if q.IsUnbounded() {
		width += e.config.IconSize
	}
	return measure.Size{Width: width, Height: e.config.QuantifierHeight}
}

// leafLines returns the label lines drawn inside a leaf node.
func leafLines(n ast.Node) []label.Line {
	if class, ok := n.(*ast.CharacterClass); ok && class.Bracket {
		if l, _ := label.LeafLabel(class); !l.Quoted {
			return []label.Line{{Text: l.Text}}
		}
		if len(class.Elements) == 0 {
			return []label.Line{{Text: label.Empty}}
		}
		return label.RangeLines(label.Members(class))
	}
	if r, ok := n.(*ast.CharacterClassRange); ok {
		return label.RangeLines([]label.Range{{Min: r.Min, Max: r.Max}})
	}
	l, ok := label.LeafLabel(n)
	if !ok {
		return nil
	}
	line := label.Line{Text: l.Text}
	if l.Quoted {
		line.Quotes = 1
	}
	return []label.Line{line}
}
