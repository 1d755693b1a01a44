package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/internal/watch"
	"github.com/KromDaniel/regraph/pkg/regraph"
)

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <session-file|directory>",
		Short: "Re-run session files whenever they change",
		Long: `Watch a session file, or a directory of session files, and re-run the
session after every change: the diagram is rebuilt, the source text is
highlighted and the test cases are run.

The include patterns and debounce interval come from the watch section of
the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

func (a *app) watch(ctx context.Context, out io.Writer, path string) error {
	cfg := watch.DefaultConfig(path)
	cfg.Debounce = a.cfg.Watch.Debounce
	cfg.Include = a.cfg.Watch.Include

	w, err := watch.New(cfg, a.logger)
	if err != nil {
		return err
	}
	defer w.Stop()

	var mu sync.Mutex
	run := func(file string) error {
		mu.Lock()
		defer mu.Unlock()
		return a.runSessionFile(out, file)
	}

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		if err := run(path); err != nil {
			a.logger.Error("session run failed", "path", path, "error", err)
		}
	}
	return w.Watch(ctx, run)
}

// runSessionFile loads and runs one session and prints a summary line for
// it and each failing test case.
func (a *app) runSessionFile(out io.Writer, path string) error {
	s, err := regraph.LoadSession(path)
	if err != nil {
		return err
	}
	report, runErr := s.Run(a.buildOptions(s.Pattern, s.Flags), a.matchOptions()...)
	if report == nil {
		return runErr
	}

	res := report.Result
	if !res.ValidExpression {
		fmt.Fprintf(out, "%s: %s invalid: %v\n", path, res.Literal(), res.Err())
		return runErr
	}
	passed := 0
	for _, tc := range report.Testcases {
		if !tc.Failed() {
			passed++
		}
	}
	fmt.Fprintf(out, "%s: %s %gx%g, %d marks, %d/%d test cases passed\n",
		path, res.Literal(), res.Diagram.Width, res.Diagram.Height,
		len(report.Marks), passed, len(report.Testcases))
	for _, tc := range report.Testcases {
		if tc.Failed() {
			fmt.Fprintf(out, "  FAIL %s %q\n", tc.Title, tc.Input)
		}
	}
	return runErr
}
