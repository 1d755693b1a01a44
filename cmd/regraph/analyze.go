package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/pkg/regraph"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var flags, output string

	cmd := &cobra.Command{
		Use:   "analyze <pattern>",
		Short: "Summarise the structure of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output, formatText, formatJSON, formatYAML); err != nil {
				return err
			}
			res, err := regraph.Analyze(args[0], flags)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != formatText {
				return writeStructured(out, output, res)
			}
			fmt.Fprintf(out, "Features: %s\n", strings.Join(res.FeatureLabels, ", "))
			fmt.Fprintf(out, "Nodes:    %d\n", res.Nodes)
			fmt.Fprintf(out, "Depth:    %d\n", res.Depth)
			kinds := make([]string, 0, len(res.Counts))
			for k := range res.Counts {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				fmt.Fprintf(out, "  %-20s %d\n", k, res.Counts[k])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "expression flags (dgimsuvy)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}
