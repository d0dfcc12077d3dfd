package core

import "github.com/huangsam/stepviz/schema"

// SummarizeExperiments aggregates record counts, metrics and step range per experiment.
func SummarizeExperiments(records []schema.ExperimentDataPoint) []schema.ExperimentSummary {
	var out []schema.ExperimentSummary
	index := make(map[string]int)
	metricSeen := make(map[string]map[string]struct{})

	for _, r := range records {
		if r.ExperimentID == "" {
			continue
		}
		i, ok := index[r.ExperimentID]
		if !ok {
			i = len(out)
			index[r.ExperimentID] = i
			out = append(out, schema.ExperimentSummary{ExperimentID: r.ExperimentID, MinStep: r.Step, MaxStep: r.Step})
			metricSeen[r.ExperimentID] = make(map[string]struct{})
		}
		s := &out[i]
		s.Records++
		s.MinStep = min(s.MinStep, r.Step)
		s.MaxStep = max(s.MaxStep, r.Step)
		if _, ok := metricSeen[r.ExperimentID][r.MetricName]; !ok && r.MetricName != "" {
			metricSeen[r.ExperimentID][r.MetricName] = struct{}{}
			s.Metrics = append(s.Metrics, r.MetricName)
		}
	}
	return out
}

// SummarizeMetrics aggregates record counts, experiment counts and ranges per metric.
func SummarizeMetrics(records []schema.ExperimentDataPoint) []schema.MetricSummary {
	var out []schema.MetricSummary
	index := make(map[string]int)
	expSeen := make(map[string]map[string]struct{})

	for _, r := range records {
		if r.MetricName == "" {
			continue
		}
		i, ok := index[r.MetricName]
		if !ok {
			i = len(out)
			index[r.MetricName] = i
			out = append(out, schema.MetricSummary{
				Metric:   r.MetricName,
				MinStep:  r.Step,
				MaxStep:  r.Step,
				MinValue: r.Value,
				MaxValue: r.Value,
			})
			expSeen[r.MetricName] = make(map[string]struct{})
		}
		s := &out[i]
		s.Records++
		s.MinStep = min(s.MinStep, r.Step)
		s.MaxStep = max(s.MaxStep, r.Step)
		s.MinValue = min(s.MinValue, r.Value)
		s.MaxValue = max(s.MaxValue, r.Value)
		if _, ok := expSeen[r.MetricName][r.ExperimentID]; !ok && r.ExperimentID != "" {
			expSeen[r.MetricName][r.ExperimentID] = struct{}{}
			s.Experiments++
		}
	}
	return out
}
