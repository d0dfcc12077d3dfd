package core

import "github.com/huangsam/stepviz/schema"

// Pivot groups the records of the selected experiments by metric, then by step.
// Each step row collects one value per experiment; when the same (metric, step,
// experiment) cell appears more than once the last record wins.
//
// Rows inside each metric are unordered. Callers sort once via StepIndex.Sorted.
// Records missing an experiment id or metric name contribute nothing.
func Pivot(records []schema.ExperimentDataPoint, selectedIDs []string) schema.PivotedSeries {
	if len(selectedIDs) == 0 {
		return schema.PivotedSeries{}
	}

	selected := make(map[string]struct{}, len(selectedIDs))
	for _, id := range selectedIDs {
		selected[id] = struct{}{}
	}

	result := schema.PivotedSeries{}
	position := make(map[string]int) // metric -> index into result
	for _, rec := range records {
		if rec.ExperimentID == "" || rec.MetricName == "" {
			continue
		}
		if _, ok := selected[rec.ExperimentID]; !ok {
			continue
		}

		i, ok := position[rec.MetricName]
		if !ok {
			i = len(result)
			position[rec.MetricName] = i
			result = append(result, schema.PivotedMetric{Metric: rec.MetricName, Steps: schema.StepIndex{}})
		}

		steps := result[i].Steps
		row, ok := steps[rec.Step]
		if !ok {
			row = schema.StepRow{Step: rec.Step, Values: make(map[string]float64)}
			steps[rec.Step] = row
		}
		row.Values[rec.ExperimentID] = rec.Value
	}
	return result
}
