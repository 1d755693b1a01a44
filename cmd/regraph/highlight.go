package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/pkg/regraph"
)

func newHighlightCmd(a *app) *cobra.Command {
	var (
		flags  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "highlight <pattern> [file]",
		Short: "Mark every match of a pattern in a text",
		Long: `Mark every match of a pattern in a text read from a file or stdin.

Positions are rune offsets. Every match is marked, with or without the
global flag.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output, formatText, formatJSON, formatYAML); err != nil {
				return err
			}

			var (
				data []byte
				err  error
			)
			if len(args) == 2 && args[1] != "-" {
				data, err = os.ReadFile(args[1])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			s := &regraph.Session{Pattern: args[0], Flags: flags, Source: string(data)}
			report, runErr := s.Run(a.buildOptions(s.Pattern, s.Flags), a.matchOptions()...)
			if report == nil {
				return runErr
			}
			if !report.Result.ValidExpression {
				return invalidError(report.Result)
			}

			out := cmd.OutOrStdout()
			if output != formatText {
				if err := writeStructured(out, output, report.Marks); err != nil {
					return err
				}
				return runErr
			}
			runes := []rune(s.Source)
			for _, m := range report.Marks {
				fmt.Fprintf(out, "%d-%d\t%q\n", m.From, m.To, string(runes[m.From:m.To]))
			}
			return runErr
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "expression flags (dgimsuvy)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}
