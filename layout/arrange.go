package layout

import (
	"github.com/KromDaniel/regraph/ast"
	"github.com/KromDaniel/regraph/label"
)

// Point is a position in diagram units, with Y growing downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Left returns the middle of the left side.
func (r Rect) Left() Point { return Point{X: r.X, Y: r.Y + r.Height/2} }

// Right returns the middle of the right side.
func (r Rect) Right() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height/2} }

// Contains reports whether o lies within r.
func (r Rect) Contains(o Rect) bool {
	const eps = 1e-9
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.X+o.Width <= r.X+r.Width+eps && o.Y+o.Height <= r.Y+r.Height+eps
}

// Node is a positioned diagram node. Box covers the decoration; Content is
// centred within it.
type Node struct {
	ID         int      `json:"id"`
	Kind       ast.Kind `json:"kind"`
	Start      int      `json:"start"`
	End        int      `json:"end"`
	Name       string   `json:"name,omitempty"`
	Quantifier string   `json:"quantifier,omitempty"`
	Greedy     bool     `json:"greedy,omitempty"`
	Lines      []string `json:"lines,omitempty"`
	Box        Rect     `json:"box"`
	Content    Rect     `json:"content"`
	Children   []*Node  `json:"children,omitempty"`
}

// Edge is a straight connection between two points.
type Edge struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Diagram is the arranged layout of one pattern. Start and End are the root
// markers on either side of the pattern.
type Diagram struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Start  Rect    `json:"start"`
	End    Rect    `json:"end"`
	Root   *Node   `json:"root,omitempty"`
	Edges  []Edge  `json:"edges,omitempty"`
}

// Walk calls fn for every node of the diagram in pre-order.
func (d *Diagram) Walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.Children {
			visit(c)
		}
	}
	if d.Root != nil {
		visit(d.Root)
	}
}

type arranger struct {
	config Config
	sizes  Sizes
	nextID int
	edges  []Edge
}

// Arrange is pass two. It places the pattern between the two root markers
// with one horizontal margin on each side.
func (e *Engine) Arrange(pattern *ast.Pattern, sizes Sizes) *Diagram {
	if pattern == nil {
		return &Diagram{}
	}
	a := &arranger{config: e.config, sizes: sizes}
	root := e.config.RootSize()
	box := sizes[pattern].Box
	height := max(box.Height, root.Height)

	d := &Diagram{
		Width:  root.Width + e.config.NodeMarginHorizontal + box.Width + e.config.NodeMarginHorizontal + root.Width,
		Height: height,
	}
	d.Start = Rect{X: 0, Y: (height - root.Height) / 2, Width: root.Width, Height: root.Height}
	d.Root = a.place(pattern, root.Width+e.config.NodeMarginHorizontal, (height-box.Height)/2)
	d.End = Rect{X: d.Width - root.Width, Y: d.Start.Y, Width: root.Width, Height: root.Height}

	d.Edges = append(d.Edges, Edge{From: d.Start.Right(), To: d.Root.Content.Left()})
	d.Edges = append(d.Edges, a.edges...)
	d.Edges = append(d.Edges, Edge{From: d.Root.Content.Right(), To: d.End.Left()})
	return d
}

// place positions n with its box at (x, y) and recurses into its children.
func (a *arranger) place(n ast.Node, x, y float64) *Node {
	size := a.sizes[n]
	start, end := n.Span()
	node := &Node{
		ID:    a.nextID,
		Kind:  n.Kind(),
		Start: start,
		End:   end,
		Box:   Rect{X: x, Y: y, Width: size.Box.Width, Height: size.Box.Height},
		Content: Rect{
			X:      x + (size.Box.Width-size.Content.Width)/2,
			Y:      y + (size.Box.Height-size.Content.Height)/2,
			Width:  size.Content.Width,
			Height: size.Content.Height,
		},
	}
	a.nextID++

	if name, ok := label.DisplayName(n); ok {
		node.Name = name
	}
	if q := label.QuantifierOf(n); q != nil {
		node.Quantifier = label.QuantifierLabel(q)
		node.Greedy = q.Greedy
	}
	for _, line := range leafLines(n) {
		node.Lines = append(node.Lines, line.Text)
	}

	switch n := n.(type) {
	case *ast.Alternative:
		a.placeSequence(node, n.Elements)
	case *ast.Pattern:
		a.placeChoice(node, n.Alternatives)
	case *ast.Group:
		a.placeChoice(node, n.Alternatives)
	case *ast.CapturingGroup:
		a.placeChoice(node, n.Alternatives)
	case *ast.Assertion:
		a.placeChoice(node, n.Alternatives)
	}
	return node
}

// placeSequence puts elements left to right, centred on the content's
// horizontal midline, and links neighbours.
func (a *arranger) placeSequence(parent *Node, elements []ast.Element) {
	if len(elements) == 0 {
		a.edges = append(a.edges, Edge{From: parent.Content.Left(), To: parent.Content.Right()})
		return
	}
	var row float64
	for _, el := range elements {
		row += a.sizes[el].Box.Width
	}
	row += float64(len(elements)-1) * a.config.NodeMarginHorizontal

	x := parent.Content.X + (parent.Content.Width-row)/2
	mid := parent.Content.Y + parent.Content.Height/2
	for i, el := range elements {
		box := a.sizes[el].Box
		child := a.place(el, x, mid-box.Height/2)
		if i == 0 {
			a.edges = append(a.edges, Edge{From: parent.Content.Left(), To: child.Content.Left()})
		} else {
			prev := parent.Children[i-1]
			a.edges = append(a.edges, Edge{From: prev.Content.Right(), To: child.Content.Left()})
		}
		parent.Children = append(parent.Children, child)
		x += box.Width + a.config.NodeMarginHorizontal
	}
	last := parent.Children[len(parent.Children)-1]
	a.edges = append(a.edges, Edge{From: last.Content.Right(), To: parent.Content.Right()})
}

// placeChoice stacks branches top to bottom, each centred horizontally, and
// connects both sides of the parent to every branch.
func (a *arranger) placeChoice(parent *Node, alts []*ast.Alternative) {
	if len(alts) == 0 {
		return
	}
	var stack float64
	for _, alt := range alts {
		stack += a.sizes[alt].Box.Height
	}
	stack += float64(len(alts)-1) * a.config.NodeMarginVertical

	y := parent.Content.Y + (parent.Content.Height-stack)/2
	for _, alt := range alts {
		box := a.sizes[alt].Box
		child := a.place(alt, parent.Content.X+(parent.Content.Width-box.Width)/2, y)
		if len(alts) > 1 {
			a.edges = append(a.edges,
				Edge{From: parent.Content.Left(), To: child.Content.Left()},
				Edge{From: child.Content.Right(), To: parent.Content.Right()})
		}
		parent.Children = append(parent.Children, child)
		y += box.Height + a.config.NodeMarginVertical
	}
}
