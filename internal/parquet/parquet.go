// Package parquet provides data structures and functions for reading and writing
// experiment records as Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/stepviz/schema"
	"github.com/parquet-go/parquet-go"
)

// readBatchSize is how many rows are decoded per Read call.
const readBatchSize = 1024

// RecordRow is one experiment record in long format.
// Columns are optional so that files with missing cells can still be read and
// their bad rows rejected one by one instead of failing the whole file.
type RecordRow struct {
	// ExperimentID identifies the run the value belongs to
	ExperimentID *string `parquet:"experiment_id,optional,snappy"`

	// MetricName is the tracked metric (e.g. train_loss)
	MetricName *string `parquet:"metric_name,optional,snappy"`

	// Step is the training or evaluation step
	Step *int64 `parquet:"step,optional,snappy"`

	// Value is the observed value at the step
	Value *float64 `parquet:"value,optional,snappy"`
}

// WriteRecordsParquet writes a slice of RecordRow structs to a Parquet file.
func WriteRecordsParquet(data []RecordRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteRecords(file, data)
}

// WriteRecords writes rows to w. The schema is derived from the RecordRow struct tags.
func WriteRecords(w io.Writer, data []RecordRow) error {
	writer := parquet.NewGenericWriter[RecordRow](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadRecordsParquet reads every RecordRow from a Parquet file.
func ReadRecordsParquet(inputPath string) ([]RecordRow, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadRecords(file)
}

// ReadRecords decodes every RecordRow from r in batches.
func ReadRecords(r io.ReaderAt) (rows []RecordRow, err error) {
	defer func() {
		// parquet-go panics on some corrupt footers
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("failed to read parquet file: %v", p)
		}
	}()

	reader := parquet.NewGenericReader[RecordRow](r)
	defer func() { _ = reader.Close() }()

	rows = make([]RecordRow, 0, reader.NumRows())
	buf := make([]RecordRow, readBatchSize)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
		if n == 0 {
			return rows, nil
		}
	}
}

// ConvertRecords converts schema.ExperimentDataPoint to RecordRow for Parquet export.
func ConvertRecords(records []schema.ExperimentDataPoint) []RecordRow {
	result := make([]RecordRow, len(records))
	for i, record := range records {
		result[i] = NewRecordRow(record.ExperimentID, record.MetricName, record.Step, record.Value)
	}
	return result
}

// ConvertChartRows flattens chart inputs back into long format, one row per drawn point.
// Steps where a line has no value are skipped.
func ConvertChartRows(inputs []schema.ChartRenderInput) []RecordRow {
	var result []RecordRow
	for _, in := range inputs {
		for _, row := range in.Rows {
			for _, id := range in.LineIDs {
				if v, ok := row.Values[id]; ok {
					result = append(result, NewRecordRow(id, in.Metric, row.Step, v))
				}
			}
		}
	}
	return result
}

// NewRecordRow builds a fully populated RecordRow.
func NewRecordRow(experimentID, metric string, step int64, value float64) RecordRow {
	return RecordRow{ExperimentID: &experimentID, MetricName: &metric, Step: &step, Value: &value}
}

// ToDataPoint validates a decoded row. row is the 1-based row number used in errors.
func (r RecordRow) ToDataPoint(row int) (schema.ExperimentDataPoint, error) {
	var p schema.ExperimentDataPoint
	switch {
	case r.ExperimentID == nil:
		return p, &schema.RecordError{Row: row, Field: schema.ColExperimentID, Reason: "missing"}
	case r.MetricName == nil:
		return p, &schema.RecordError{Row: row, Field: schema.ColMetricName, Reason: "missing"}
	case r.Step == nil:
		return p, &schema.RecordError{Row: row, Field: schema.ColStep, Reason: "missing"}
	case r.Value == nil:
		return p, &schema.RecordError{Row: row, Field: schema.ColValue, Reason: "missing"}
	}

	p = schema.ExperimentDataPoint{ExperimentID: *r.ExperimentID, MetricName: *r.MetricName, Step: *r.Step, Value: *r.Value}
	if err := p.Validate(); err != nil {
		var recErr *schema.RecordError
		if errors.As(err, &recErr) {
			recErr.Row = row
		}
		return schema.ExperimentDataPoint{}, err
	}
	return p, nil
}

// ExperimentSummaryRow is one experiments summary row.
type ExperimentSummaryRow struct {
	ExperimentID string   `parquet:"experiment_id,snappy"`
	Records      int64    `parquet:"records,snappy"`
	Metrics      []string `parquet:"metrics,list"`
	MinStep      int64    `parquet:"min_step,snappy"`
	MaxStep      int64    `parquet:"max_step,snappy"`
}

// MetricSummaryRow is one metrics summary row.
type MetricSummaryRow struct {
	Metric      string  `parquet:"metric,snappy"`
	Records     int64   `parquet:"records,snappy"`
	Experiments int64   `parquet:"experiments,snappy"`
	MinStep     int64   `parquet:"min_step,snappy"`
	MaxStep     int64   `parquet:"max_step,snappy"`
	MinValue    float64 `parquet:"min_value,snappy"`
	MaxValue    float64 `parquet:"max_value,snappy"`
}

// ConvertExperimentSummaries converts summaries for Parquet export.
func ConvertExperimentSummaries(summaries []schema.ExperimentSummary) []ExperimentSummaryRow {
	result := make([]ExperimentSummaryRow, len(summaries))
	for i, s := range summaries {
		result[i] = ExperimentSummaryRow{
			ExperimentID: s.ExperimentID,
			Records:      int64(s.Records),
			Metrics:      s.Metrics,
			MinStep:      s.MinStep,
			MaxStep:      s.MaxStep,
		}
	}
	return result
}

// ConvertMetricSummaries converts summaries for Parquet export.
func ConvertMetricSummaries(summaries []schema.MetricSummary) []MetricSummaryRow {
	result := make([]MetricSummaryRow, len(summaries))
	for i, s := range summaries {
		result[i] = MetricSummaryRow{
			Metric:      s.Metric,
			Records:     int64(s.Records),
			Experiments: int64(s.Experiments),
			MinStep:     s.MinStep,
			MaxStep:     s.MaxStep,
			MinValue:    s.MinValue,
			MaxValue:    s.MaxValue,
		}
	}
	return result
}

// WriteRowsParquet writes any tagged row type to a Parquet file.
func WriteRowsParquet[T any](data []T, outputPath string) error {
	if err := parquet.WriteFile(outputPath, data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
