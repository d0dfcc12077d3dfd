package cmd

import (
	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/outwriter"
	"github.com/huangsam/stepviz/internal/render"
	"github.com/spf13/cobra"
)

// chartsCmd computes per-metric chart data for the selected experiments.
var chartsCmd = &cobra.Command{
	Use:   "charts [files...]",
	Short: "Compare the selected experiments metric by metric.",
	Long: `Pivot the records of the selected experiments into one chart per metric.

Every metric becomes a table of steps with one value per experiment. Long
series are downsampled by averaging contiguous buckets so no chart holds more
than --threshold points. Line colors follow the order of --select.

Examples:
  # Summarize every metric across all experiments
  stepviz charts runs.csv

  # Compare two runs and keep at most 500 points per chart
  stepviz charts runs.csv --select baseline,lr-3e4 --threshold 500

  # Render interactive HTML charts next to the summary
  stepviz charts runs.parquet --render html --render-dir out

  # Export the downsampled points for other tools
  stepviz charts runs.csv --output parquet --output-file charts.parquet

  # Read records from a database instead of files
  stepviz charts --source-backend sqlite --select baseline`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := openSource()
		defer closeSource(src)
		if err := core.ExecuteCharts(rootCtx, cfg, src, outwriter.NewOutWriter(), render.NewRenderer()); err != nil {
			contract.LogFatal("Cannot compute charts", err)
		}
	},
}
