package ast

// Children returns the direct children of n in source order. Classes are
// leaves for traversal purposes; their elements are reached through
// CharacterClass.Elements.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Pattern:
		return alternativeNodes(n.Alternatives)
	case *Alternative:
		out := make([]Node, len(n.Elements))
		for i, e := range n.Elements {
			out[i] = e
		}
		return out
	case *Group:
		return alternativeNodes(n.Alternatives)
	case *CapturingGroup:
		return alternativeNodes(n.Alternatives)
	case *Assertion:
		return alternativeNodes(n.Alternatives)
	case *CharacterClass, *CharacterClassRange, *Character, *Backreference:
		return nil
	}
	return nil
}

func alternativeNodes(alts []*Alternative) []Node {
	out := make([]Node, len(alts))
	for i, a := range alts {
		out[i] = a
	}
	return out
}

// Walk visits the subtree rooted at n depth-first, left to right, calling fn
// on every descendant before the node that contains it (post-order). Layout
// measurement depends on this order: a parent is measured only after all of
// its children.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
	fn(n)
}

// Count returns the number of nodes of each kind in the subtree rooted at n.
func Count(n Node) map[Kind]int {
	counts := make(map[Kind]int)
	Walk(n, func(n Node) {
		counts[n.Kind()]++
	})
	return counts
}
