package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/server"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// serveCmd runs the interactive dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Serve an interactive dashboard for the records.",
	Long: `Load the records once and serve a dashboard where experiments can be
toggled on and off. Charts are recomputed in the background and only the most
recent selection is ever shown.

Endpoints:
  /                    dashboard
  /charts.html         interactive charts with zoom
  /api/charts          current chart state as JSON
  /api/selection       POST {"ids": [...]} to replace the selection
  /metrics             Prometheus metrics

Examples:
  stepviz serve runs.csv
  stepviz serve runs.csv --addr 0.0.0.0:9000 --threshold 1000`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		src := openSource()
		defer closeSource(src)

		records, err := core.LoadRecords(rootCtx, src)
		if err != nil {
			return err
		}
		return runServer(rootCtx, cfg, records)
	},
}

func runServer(parent context.Context, cfg *contract.Config, records []schema.ExperimentDataPoint) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx, cfg, records)
	defer srv.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down dashboard")
		return nil
	})
	return g.Wait()
}
