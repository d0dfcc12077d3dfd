package cmd

import (
	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/outwriter"
	"github.com/spf13/cobra"
)

// metricsCmd lists the metrics in the record source.
var metricsCmd = &cobra.Command{
	Use:   "metrics [files...]",
	Short: "List the metrics in the record source.",
	Long: `Show every metric with the number of experiments reporting it and its step and value ranges.

Examples:
  stepviz metrics runs.csv
  stepviz metrics runs.csv --output csv --output-file metrics.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := openSource()
		defer closeSource(src)
		if err := core.ExecuteMetrics(rootCtx, cfg, src, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot list metrics", err)
		}
	},
}
