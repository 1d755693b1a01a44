package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KromDaniel/regraph/layout"
)

// Output formats.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatText = "text"
)

func validFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeStructured(w io.Writer, format string, v any) error {
	if format == formatYAML {
		return writeYAML(w, v)
	}
	return writeJSON(w, v)
}

// writeTree prints the diagram nodes as an indented outline.
func writeTree(w io.Writer, d *layout.Diagram) {
	fmt.Fprintf(w, "diagram %gx%g\n", d.Width, d.Height)
	var visit func(n *layout.Node, depth int)
	visit = func(n *layout.Node, depth int) {
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth+1))
		b.WriteString(n.Kind.String())
		if n.Name != "" {
			fmt.Fprintf(&b, " [%s]", n.Name)
		}
		if len(n.Lines) > 0 {
			fmt.Fprintf(&b, " %s", strings.Join(n.Lines, " | "))
		}
		if n.Quantifier != "" {
			fmt.Fprintf(&b, " {%s}", strings.TrimSpace(n.Quantifier))
		}
		fmt.Fprintf(&b, " @(%g,%g %gx%g)", n.Box.X, n.Box.Y, n.Box.Width, n.Box.Height)
		fmt.Fprintln(w, b.String())
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	if d.Root != nil {
		visit(d.Root, 0)
	}
}
