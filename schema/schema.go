// Package schema has models, constants and validation for all parts of stepviz.
package schema

import "slices"

// ExperimentDataPoint is a single metric observation for one experiment at one step.
type ExperimentDataPoint struct {
	ExperimentID string  `json:"experiment_id"` // Experiment the value belongs to
	MetricName   string  `json:"metric_name"`   // Name of the tracked metric (e.g. train_loss)
	Step         int64   `json:"step"`          // Training or evaluation step
	Value        float64 `json:"value"`         // Observed value at the step
}

// StepRow holds every selected experiment's value for one metric at one step.
// Values only contains experiments that reported the metric at that step.
type StepRow struct {
	Step   int64              `json:"step"`
	Values map[string]float64 `json:"values"`
}

// Value returns the value recorded for experimentID and whether it exists.
func (r StepRow) Value(experimentID string) (float64, bool) {
	v, ok := r.Values[experimentID]
	return v, ok
}

// StepIndex keys the rows of a single metric by step.
type StepIndex map[int64]StepRow

// Sorted returns the rows ordered by step ascending.
func (idx StepIndex) Sorted() []StepRow {
	rows := make([]StepRow, 0, len(idx))
	for _, row := range idx {
		rows = append(rows, row)
	}
	slices.SortFunc(rows, func(a, b StepRow) int {
		switch {
		case a.Step < b.Step:
			return -1
		case a.Step > b.Step:
			return 1
		default:
			return 0
		}
	})
	return rows
}

// PivotedMetric is the step-indexed table for one metric.
type PivotedMetric struct {
	Metric string
	Steps  StepIndex
}

// PivotedSeries maps metric names to their step-indexed rows, in the order
// metrics first appeared in the input records.
type PivotedSeries []PivotedMetric

// MetricSeries is the sorted and bounded row sequence for one metric.
type MetricSeries struct {
	Metric    string    `json:"metric"`
	Rows      []StepRow `json:"rows"`
	RawPoints int       `json:"raw_points"` // Row count before downsampling
}

// DownsampledSeries is the result of a full computation: one bounded series per metric.
type DownsampledSeries []MetricSeries

// Lookup returns the series for metric, if present.
func (d DownsampledSeries) Lookup(metric string) (MetricSeries, bool) {
	for _, s := range d {
		if s.Metric == metric {
			return s, true
		}
	}
	return MetricSeries{}, false
}

// Metrics returns the metric names in result order.
func (d DownsampledSeries) Metrics() []string {
	names := make([]string, len(d))
	for i, s := range d {
		names[i] = s.Metric
	}
	return names
}

// LineSpec describes how a single experiment line is drawn.
type LineSpec struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// ChartRenderInput is everything a renderer needs to draw one metric chart.
type ChartRenderInput struct {
	Metric    string     `json:"metric"`
	Title     string     `json:"title"`
	Rows      []StepRow  `json:"rows"`
	LineIDs   []string   `json:"line_ids"`
	Lines     []LineSpec `json:"lines"`
	YDomain   [2]float64 `json:"y_domain"`
	RawPoints int        `json:"raw_points"`
}

// LoadResult is what a record source yields: the accepted records plus
// bookkeeping about the rows it had to reject.
type LoadResult struct {
	Records  []ExperimentDataPoint
	Rejected int
	Errors   []error // First few rejection reasons, capped by the source
}
