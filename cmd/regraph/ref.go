package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/reference"
)

func newRefCmd(a *app) *cobra.Command {
	var (
		category string
		prefix   bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "ref [query]",
		Short: "Look up regular expression tokens",
		Long: `Search the token glossary. Without a query the categories are listed.

Examples:
  regraph ref lookahead
  regraph ref --category quantifiers
  regraph ref --prefix '\d'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 && category == "" {
				cats := reference.Categories()
				if output != formatText {
					return writeStructured(out, output, cats)
				}
				for _, c := range cats {
					fmt.Fprintf(out, "%-24s %s (%d)\n", c.Key, c.Label, len(c.Items))
				}
				return nil
			}
			if category != "" {
				if _, ok := reference.Get(category); !ok {
					return fmt.Errorf("unknown category %q", category)
				}
			}

			var items []reference.Item
			switch {
			case prefix && len(args) == 1:
				items = reference.Prefix(args[0])
			case len(args) == 1:
				items = reference.Search(category, args[0])
			default:
				c, _ := reference.Get(category)
				items = c.Items
			}
			if output != formatText {
				if items == nil {
					items = []reference.Item{}
				}
				return writeStructured(out, output, items)
			}
			writeItems(out, items)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "restrict to one category")
	cmd.Flags().BoolVar(&prefix, "prefix", false, "treat the query as a token prefix")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}

func writeItems(w io.Writer, items []reference.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no matching tokens")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%-12s %-28s %s\n", it.Token, it.Label, strings.Join(strings.Fields(it.Explanation), " "))
	}
}
