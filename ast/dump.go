package ast

import (
	"fmt"
	"strings"
)

// Dump renders the subtree rooted at n as an s-expression. Quantifiers are
// appended to the node they apply to. The output is intended for debugging
// and for structural comparisons in tests.
func Dump(n Node) string {
	var sb strings.Builder
	dump(&sb, n)
	return sb.String()
}

func dump(sb *strings.Builder, n Node) {
	sb.WriteByte('(')
	sb.WriteString(n.Kind().String())
	switch n := n.(type) {
	case *CapturingGroup:
		if n.Name != "" {
			fmt.Fprintf(sb, " <%s>", n.Name)
		} else {
			fmt.Fprintf(sb, " #%d", n.Index)
		}
	case *Assertion:
		sb.WriteByte(' ')
		if n.Negate {
			sb.WriteByte('!')
		}
		sb.WriteString(string(n.AssertKind))
	case *CharacterClass:
		if n.Bracket {
			if n.Negate {
				sb.WriteString(" ^")
			}
			for _, e := range n.Elements {
				sb.WriteByte(' ')
				dump(sb, e)
			}
		} else {
			fmt.Fprintf(sb, " %q", n.Raw)
		}
	case *CharacterClassRange:
		fmt.Fprintf(sb, " %q-%q", n.Min.Raw, n.Max.Raw)
	case *Character:
		fmt.Fprintf(sb, " %q", n.Raw)
	case *Backreference:
		fmt.Fprintf(sb, " \\%s", n.Ref())
	}
	for _, c := range Children(n) {
		sb.WriteByte(' ')
		dump(sb, c)
	}
	sb.WriteByte(')')
	if e, ok := n.(Element); ok && e.Quant() != nil {
		sb.WriteString(e.Quant().Raw)
	}
}
