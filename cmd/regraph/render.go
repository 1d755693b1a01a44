package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/pkg/regraph"
)

func newRenderCmd(a *app) *cobra.Command {
	var flags, output string

	cmd := &cobra.Command{
		Use:   "render <pattern>",
		Short: "Lay out a pattern as a railroad diagram",
		Long: `Parse a pattern and print its laid out diagram.

Examples:
  # Print the diagram as JSON
  regraph render '[a-z]+@\w+'

  # Print an outline of the nodes
  regraph render '(a|b)*' -o text`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output, formatJSON, formatYAML, formatText); err != nil {
				return err
			}
			res, err := regraph.Build(a.buildOptions(args[0], flags))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != formatText {
				if err := writeStructured(out, output, res); err != nil {
					return err
				}
			} else if res.ValidExpression {
				writeTree(out, res.Diagram)
			}
			if !res.ValidExpression {
				return invalidError(res)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "expression flags (dgimsuvy)")
	cmd.Flags().StringVarP(&output, "output", "o", formatJSON, "output format (json, yaml, text)")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var flags string

	cmd := &cobra.Command{
		Use:   "validate <pattern>",
		Short: "Check a pattern and its flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := regraph.Build(a.buildOptions(args[0], flags))
			if err != nil {
				return err
			}
			if !res.ValidExpression {
				return invalidError(res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", res.Literal())
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "expression flags (dgimsuvy)")
	return cmd
}

func invalidError(res *regraph.Result) error {
	err := res.Err()
	if err == nil {
		err = errors.New("invalid expression")
	}
	return fmt.Errorf("%s: %w", res.Literal(), err)
}
