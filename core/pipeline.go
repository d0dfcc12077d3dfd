package core

import (
	"context"
	"fmt"

	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ComputeCharts runs the full reshaping pipeline for one selection: pivot the
// selected records, sort each metric once by step, then downsample it.
// An empty selection yields an empty result without doing any work.
func ComputeCharts(ctx context.Context, records []schema.ExperimentDataPoint, selectedIDs []string, threshold int) (schema.DownsampledSeries, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: threshold must be greater than 0 (received %d)", schema.ErrInvalidArgument, threshold)
	}
	if len(selectedIDs) == 0 {
		return schema.DownsampledSeries{}, nil
	}

	pivoted := Pivot(records, selectedIDs)
	result := make(schema.DownsampledSeries, 0, len(pivoted))
	for _, m := range pivoted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sorted := m.Steps.Sorted()
		rows, err := Downsample(sorted, threshold)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", m.Metric, err)
		}
		if !shouldSuppressHeader(ctx) {
			logrus.WithField("seq", RequestSeq(ctx)).Debugf("Downsampled metric '%s' from %d to %d points", m.Metric, len(sorted), len(rows))
		}
		result = append(result, schema.MetricSeries{Metric: m.Metric, Rows: rows, RawPoints: len(sorted)})
	}
	return result, nil
}
