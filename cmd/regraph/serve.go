package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KromDaniel/regraph/internal/metrics"
	"github.com/KromDaniel/regraph/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen    string
		watchPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the render, analyze, test, highlight, session and reference
endpoints over HTTP, with Prometheus metrics.

With --watch a session file or directory is watched alongside the server
and re-run on every change.

Examples:
  regraph serve
  regraph serve --listen 0.0.0.0:8080 --watch sessions/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Server.Address = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			collector := metrics.NewCollector(nil)
			srv := server.New(server.Options{
				Config:       a.cfg.Server,
				Build:        a.buildOptions("", ""),
				MatchTimeout: a.cfg.Match.Timeout,
				Metrics:      collector,
				Logger:       a.logger,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})
			if watchPath != "" {
				g.Go(func() error {
					return a.watch(gctx, cmd.OutOrStdout(), watchPath)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "override listen address")
	cmd.Flags().StringVar(&watchPath, "watch", "", "session file or directory to watch while serving")
	return cmd
}
