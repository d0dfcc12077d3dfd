// Package source loads experiment records from files and SQL databases.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
)

// maxReportedErrors caps how many row errors a LoadResult keeps.
const maxReportedErrors = 10

// Open returns the record source described by cfg. For the file backend every
// input path becomes its own source and the records are concatenated in order.
func Open(cfg *contract.Config) (contract.RecordSource, error) {
	if cfg.SourceBackend.IsDatabase() {
		return NewSQLSource(cfg.SourceBackend, cfg.SourceDBConnect, cfg.SourceTable)
	}
	if len(cfg.InputPaths) == 0 {
		return nil, fmt.Errorf("no input files given")
	}

	sources := make([]contract.RecordSource, 0, len(cfg.InputPaths))
	for _, path := range cfg.InputPaths {
		src, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 1 {
		return sources[0], nil
	}
	return NewMultiSource(sources...), nil
}

// OpenFile picks a file source by extension.
func OpenFile(path string) (contract.RecordSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVSource(path)
	case ".parquet":
		return NewParquetSource(path), nil
	default:
		return nil, fmt.Errorf("unsupported input %q: please provide a valid .csv file (or .parquet)", path)
	}
}

// MultiSource concatenates the records of several sources.
type MultiSource struct {
	sources []contract.RecordSource
}

var _ contract.RecordSource = &MultiSource{} // Compile-time check

// NewMultiSource returns a source that loads each source in order.
func NewMultiSource(sources ...contract.RecordSource) *MultiSource {
	return &MultiSource{sources: sources}
}

// Load implements contract.RecordSource.
func (m *MultiSource) Load(ctx context.Context) (schema.LoadResult, error) {
	var out schema.LoadResult
	for _, src := range m.sources {
		res, err := src.Load(ctx)
		if err != nil {
			return schema.LoadResult{}, fmt.Errorf("%s: %w", src.Describe(), err)
		}
		out.Records = append(out.Records, res.Records...)
		out.Rejected += res.Rejected
		for _, e := range res.Errors {
			if len(out.Errors) < maxReportedErrors {
				out.Errors = append(out.Errors, fmt.Errorf("%s: %w", src.Describe(), e))
			}
		}
	}
	return out, nil
}

// Describe implements contract.RecordSource.
func (m *MultiSource) Describe() string {
	names := make([]string, len(m.sources))
	for i, src := range m.sources {
		names[i] = src.Describe()
	}
	return strings.Join(names, ", ")
}

// Close implements contract.RecordSource.
func (m *MultiSource) Close() error {
	var errs []error
	for _, src := range m.sources {
		errs = append(errs, src.Close())
	}
	return errors.Join(errs...)
}

// loadTracker collects accepted records and rejected rows for one source.
type loadTracker struct {
	result schema.LoadResult
}

func (t *loadTracker) accept(p schema.ExperimentDataPoint) {
	t.result.Records = append(t.result.Records, p)
}

func (t *loadTracker) reject(err error) {
	t.result.Rejected++
	if len(t.result.Errors) < maxReportedErrors {
		t.result.Errors = append(t.result.Errors, err)
	}
}
