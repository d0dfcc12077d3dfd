package schema

// ExperimentSummary describes one experiment in the loaded record set.
type ExperimentSummary struct {
	ExperimentID string   `json:"experiment_id"`
	Records      int      `json:"records"`
	Metrics      []string `json:"metrics"`
	MinStep      int64    `json:"min_step"`
	MaxStep      int64    `json:"max_step"`
}

// MetricSummary describes one metric across all experiments.
type MetricSummary struct {
	Metric      string  `json:"metric"`
	Records     int     `json:"records"`
	Experiments int     `json:"experiments"`
	MinStep     int64   `json:"min_step"`
	MaxStep     int64   `json:"max_step"`
	MinValue    float64 `json:"min_value"`
	MaxValue    float64 `json:"max_value"`
}
