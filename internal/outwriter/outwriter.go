// Package outwriter writes chart data and record summaries in every supported output format.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"golang.org/x/term"
)

// OutWriter is the default contract.OutputWriter.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCharts prints computed chart data using the configured output format.
func (ow *OutWriter) WriteCharts(inputs []schema.ChartRenderInput, cfg *contract.Config, duration time.Duration) error {
	return WriteChartResults(inputs, cfg, duration)
}

// WriteExperiments prints experiment summaries using the configured output format.
func (ow *OutWriter) WriteExperiments(summaries []schema.ExperimentSummary, cfg *contract.Config) error {
	return WriteExperimentSummaries(summaries, cfg)
}

// WriteMetrics prints metric summaries using the configured output format.
func (ow *OutWriter) WriteMetrics(summaries []schema.MetricSummary, cfg *contract.Config) error {
	return WriteMetricSummaries(summaries, cfg)
}

// WriteSourceStatus prints the status of a SQL record source.
func (ow *OutWriter) WriteSourceStatus(status schema.SourceStatus, cfg *contract.Config) error {
	return WriteStatus(status, cfg)
}

// GetMaxTableNameWidth calculates the maximum width for metric and experiment
// names in table output based on terminal width.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // CI and pipes
		} else {
			termWidth = detectedWidth
		}
	}

	// Points + Lines + Y-Domain + Steps + Status with borders/padding
	baseWidth := 70

	available := termWidth - baseWidth
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
