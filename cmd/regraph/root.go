package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KromDaniel/regraph/internal/config"
	"github.com/KromDaniel/regraph/internal/logging"
	"github.com/KromDaniel/regraph/matcher"
	"github.com/KromDaniel/regraph/measure"
	"github.com/KromDaniel/regraph/pkg/regraph"
)

// app holds the state shared by every command.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
	stderr io.Writer
}

// setup loads configuration and builds the logger. It runs before every
// command.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: a.stderr,
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// buildOptions returns build options for pattern and flags following the
// loaded configuration.
func (a *app) buildOptions(pattern, flags string) regraph.Options {
	layoutCfg := a.cfg.Layout
	opts := regraph.Options{
		Pattern: pattern,
		Flags:   flags,
		Layout:  &layoutCfg,
		Logger:  a.logger,
	}
	if a.cfg.Measure.Measurer == config.MeasurerNative {
		opts.Measurer = measure.NewFaceMeasurer(a.logger)
	}
	return opts
}

func (a *app) matchOptions() []matcher.Option {
	return []matcher.Option{matcher.WithTimeout(a.cfg.Match.Timeout)}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stderr: stderr}

	root := &cobra.Command{
		Use:   "regraph",
		Short: "Regraph - regular expressions as railroad diagrams",
		Long: `Regraph parses ECMAScript regular expressions, lays them out as railroad
diagrams and runs them against sample inputs.

Diagrams can be printed, embedded in generated Go code or served over HTTP.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newRenderCmd(a),
		newValidateCmd(a),
		newTestCmd(a),
		newHighlightCmd(a),
		newAnalyzeCmd(a),
		newWatchCmd(a),
		newGenCmd(a),
		newServeCmd(a),
		newRefCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	root := newRootCmd(os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// arrayFlags is a repeatable string flag.
type arrayFlags []string

func (a *arrayFlags) String() string {
	return strings.Join(*a, ", ")
}

func (a *arrayFlags) Set(value string) error {
	*a = append(*a, value)
	return nil
}

func (a *arrayFlags) Type() string {
	return "stringArray"
}
