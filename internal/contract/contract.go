// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/stepviz/schema"
)

// RecordSource yields validated experiment records.
// This allows the pipeline to be tested without real files or databases.
type RecordSource interface {
	// Load reads every record. Malformed rows are counted in the result, not returned as errors.
	Load(ctx context.Context) (schema.LoadResult, error)

	// Describe returns a short human-readable location, e.g. "runs.csv" or "sqlite:metrics.db".
	Describe() string

	// Close releases any underlying handle.
	Close() error
}

// StatusSource is implemented by sources that can report on their backing store.
type StatusSource interface {
	RecordSource
	Status(ctx context.Context) (schema.SourceStatus, error)
}

// OutputWriter prints results using the configured output format.
type OutputWriter interface {
	WriteCharts(inputs []schema.ChartRenderInput, cfg *Config, duration time.Duration) error
	WriteExperiments(summaries []schema.ExperimentSummary, cfg *Config) error
	WriteMetrics(summaries []schema.MetricSummary, cfg *Config) error
	WriteSourceStatus(status schema.SourceStatus, cfg *Config) error
}

// ChartRenderer turns chart inputs into chart files and returns the written paths.
type ChartRenderer interface {
	RenderCharts(inputs []schema.ChartRenderInput, cfg *Config) ([]string, error)
}
