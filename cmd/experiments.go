package cmd

import (
	"github.com/huangsam/stepviz/core"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/outwriter"
	"github.com/spf13/cobra"
)

// experimentsCmd lists the experiments in the record source.
var experimentsCmd = &cobra.Command{
	Use:   "experiments [files...]",
	Short: "List the experiments in the record source.",
	Long: `Show every experiment with its record count, metrics and step range.

Use it to pick ids for --select.

Examples:
  stepviz experiments runs.csv
  stepviz experiments --source-backend postgresql --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		src := openSource()
		defer closeSource(src)
		if err := core.ExecuteExperiments(rootCtx, cfg, src, outwriter.NewOutWriter()); err != nil {
			contract.LogFatal("Cannot list experiments", err)
		}
	},
}
