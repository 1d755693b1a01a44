package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/pkg/regraph"
	"github.com/KromDaniel/regraph/testcase"
)

func newTestCmd(a *app) *cobra.Command {
	var (
		flags   string
		cases   arrayFlags
		session string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "test [pattern]",
		Short: "Run test cases against a pattern",
		Long: `Run sample inputs against a pattern and report which of them match.

Inputs come from repeated --case flags or from the test cases of a session
file. With the global flag a case passes when the input contains a match;
without it the first match attempt has to succeed.

Examples:
  regraph test '\d+' --flags g --case 'a1' --case 'abc'
  regraph test --session session.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output, formatText, formatJSON, formatYAML); err != nil {
				return err
			}

			var s *regraph.Session
			switch {
			case session != "":
				loaded, err := regraph.LoadSession(session)
				if err != nil {
					return err
				}
				s = loaded
				if len(args) == 1 {
					s.Pattern, s.Flags = args[0], flags
				}
			case len(args) == 1:
				s = &regraph.Session{Pattern: args[0], Flags: flags}
			default:
				return errors.New("a pattern or --session is required")
			}
			for i, input := range cases {
				s.Testcases = append(s.Testcases, testcase.Testcase{
					Title: fmt.Sprintf("case %d", i+1),
					Input: input,
				})
			}
			if len(s.Testcases) == 0 {
				return errors.New("no test cases given")
			}

			report, runErr := s.Run(a.buildOptions(s.Pattern, s.Flags), a.matchOptions()...)
			if report == nil {
				return runErr
			}
			if !report.Result.ValidExpression {
				return invalidError(report.Result)
			}

			out := cmd.OutOrStdout()
			if output == formatText {
				for _, tc := range report.Testcases {
					status := "PASS"
					if tc.Failed() {
						status = "FAIL"
					}
					fmt.Fprintf(out, "%s  %-12s %q\n", status, tc.Title, tc.Input)
				}
			} else if err := writeStructured(out, output, report.Testcases); err != nil {
				return err
			}

			if runErr != nil {
				return runErr
			}
			if !report.Passed() {
				return errors.New("some test cases failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags, "flags", "f", "", "expression flags (dgimsuvy)")
	cmd.Flags().VarP(&cases, "case", "t", "test input (repeatable)")
	cmd.Flags().StringVarP(&session, "session", "s", "", "session file with test cases")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format (text, json, yaml)")
	return cmd
}
