package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/internal/codegen"
	"github.com/KromDaniel/regraph/pkg/regraph"
)

func newGenCmd(a *app) *cobra.Command {
	var (
		opts  regraph.GenerateOptions
		check bool
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Go code embedding a laid out diagram",
		Long: `Generate a Go file declaring the pattern, its flags, the layout
configuration and the laid out diagram as literals.

With --check nothing is written; the command prints a unified diff against
the existing files and fails when they are out of date.

Examples:
  regraph gen --pattern '[\w.]+@[\w.]+' --name Email --output email_diagram.go --package emails
  regraph gen --pattern '[\w.]+@[\w.]+' --name Email --output email_diagram.go --package emails --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Pattern == "" {
				return errors.New("--pattern is required")
			}
			if opts.Name == "" {
				opts.Name = codegen.UpperFirst(strings.TrimSuffix(filepath.Base(opts.OutputFile), filepath.Ext(opts.OutputFile)))
			}
			layoutCfg := a.cfg.Layout
			opts.Layout = &layoutCfg
			opts.Verbose = opts.Verbose || a.verbose
			opts.Logger = a.logger

			out := cmd.OutOrStdout()
			if check {
				diff, err := regraph.CheckGenerated(opts)
				if err != nil {
					return err
				}
				if diff != "" {
					fmt.Fprint(out, diff)
					return fmt.Errorf("%s is out of date", opts.OutputFile)
				}
				fmt.Fprintf(out, "✓ %s is up to date\n", opts.OutputFile)
				return nil
			}

			if err := regraph.Generate(opts); err != nil {
				return err
			}
			fmt.Fprintf(out, "Generated %s\n", opts.OutputFile)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "expression body")
	cmd.Flags().StringVarP(&opts.Flags, "flags", "f", "", "expression flags (dgimsuvy)")
	cmd.Flags().StringVarP(&opts.Name, "name", "n", "", "declaration prefix (defaults to the output file name)")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "", "output file")
	cmd.Flags().StringVar(&opts.Package, "package", "main", "package name")
	cmd.Flags().BoolVar(&opts.GenerateTestFile, "test-file", false, "also generate a test that recomputes the diagram")
	cmd.Flags().BoolVar(&check, "check", false, "compare with existing files instead of writing")
	return cmd
}
