package source

import (
	"context"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/parquet"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ParquetSource reads records from a Parquet file in long format.
type ParquetSource struct {
	path string
}

var _ contract.RecordSource = &ParquetSource{} // Compile-time check

// NewParquetSource returns a Parquet source for path.
func NewParquetSource(path string) *ParquetSource {
	return &ParquetSource{path: path}
}

// Load implements contract.RecordSource.
func (s *ParquetSource) Load(ctx context.Context) (schema.LoadResult, error) {
	rows, err := parquet.ReadRecordsParquet(s.path)
	if err != nil {
		return schema.LoadResult{}, err
	}

	var tracker loadTracker
	for i, row := range rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return schema.LoadResult{}, err
			}
		}
		p, err := row.ToDataPoint(i + 1)
		if err != nil {
			tracker.reject(err)
			continue
		}
		tracker.accept(p)
	}
	if tracker.result.Rejected > 0 {
		logrus.WithField("file", s.path).Warnf("Skipped %d invalid rows", tracker.result.Rejected)
	}
	return tracker.result, nil
}

// Describe implements contract.RecordSource.
func (s *ParquetSource) Describe() string { return s.path }

// Close implements contract.RecordSource.
func (s *ParquetSource) Close() error { return nil }
