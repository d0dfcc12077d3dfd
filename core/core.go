// Package core has core logic for pivoting, downsampling and presenting experiment metrics.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ExecutorFunc defines the function signature for executing the record-driven commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, src contract.RecordSource, ow contract.OutputWriter) error

// ExecuteCharts loads records, computes chart data for the selection through a
// computation channel and writes the result. Charts are rendered to files when
// a renderer is given and cfg.Render asks for one.
func ExecuteCharts(ctx context.Context, cfg *contract.Config, src contract.RecordSource, ow contract.OutputWriter, renderer contract.ChartRenderer) error {
	start := time.Now()
	records, err := LoadRecords(ctx, src)
	if err != nil {
		return err
	}

	selected := NormalizeSelection(cfg.Selected)
	if len(selected) == 0 {
		selected = ExperimentIDs(records)
	} else {
		warnUnknownExperiments(records, selected)
	}

	ch := NewChannel(ctx, ChannelOptions{Threshold: cfg.Threshold, QueueSize: cfg.QueueSize})
	defer ch.Close()

	seq := ch.Request(records, selected)
	state, err := ch.Wait(ctx, seq)
	if err != nil {
		return err
	}
	if state.Status == StatusError {
		return fmt.Errorf("chart computation failed: %w", state.Err)
	}

	inputs := BuildDashboard(state.Result, state.Selection)
	if renderer != nil && cfg.Render != schema.NoRender && len(inputs) > 0 {
		paths, err := renderer.RenderCharts(inputs, cfg)
		if err != nil {
			return fmt.Errorf("failed to render charts: %w", err)
		}
		for _, p := range paths {
			logrus.Infof("Rendered chart %s", p)
		}
	}
	return ow.WriteCharts(inputs, cfg, time.Since(start))
}

// ExecuteExperiments prints one summary row per experiment in the source.
func ExecuteExperiments(ctx context.Context, cfg *contract.Config, src contract.RecordSource, ow contract.OutputWriter) error {
	records, err := LoadRecords(ctx, src)
	if err != nil {
		return err
	}
	return ow.WriteExperiments(SummarizeExperiments(records), cfg)
}

// ExecuteMetrics prints one summary row per metric in the source.
func ExecuteMetrics(ctx context.Context, cfg *contract.Config, src contract.RecordSource, ow contract.OutputWriter) error {
	records, err := LoadRecords(ctx, src)
	if err != nil {
		return err
	}
	return ow.WriteMetrics(SummarizeMetrics(records), cfg)
}

// LoadRecords reads every record from src and logs a summary of rejected rows.
func LoadRecords(ctx context.Context, src contract.RecordSource) ([]schema.ExperimentDataPoint, error) {
	res, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records from %s: %w", src.Describe(), err)
	}
	if res.Rejected > 0 {
		entry := logrus.WithFields(logrus.Fields{"source": src.Describe(), "rejected": res.Rejected})
		for _, e := range res.Errors {
			entry.Debug(e)
		}
		entry.Warnf("Skipped %d malformed records", res.Rejected)
	}
	if !shouldSuppressHeader(ctx) {
		logrus.Infof("Loaded %d records from %s", len(res.Records), src.Describe())
	}
	return res.Records, nil
}

func warnUnknownExperiments(records []schema.ExperimentDataPoint, selected []string) {
	known := make(map[string]struct{})
	for _, id := range ExperimentIDs(records) {
		known[id] = struct{}{}
	}
	for _, id := range selected {
		if _, ok := known[id]; !ok {
			logrus.Warnf("Experiment '%s' has no records", id)
		}
	}
}
