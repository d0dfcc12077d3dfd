package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ErrEmptyCSV is returned when a CSV file yields no valid records.
var ErrEmptyCSV = errors.New("the CSV file is empty or has an invalid format")

// CSVSource reads records from a CSV file with a header row.
type CSVSource struct {
	path string
}

var _ contract.RecordSource = &CSVSource{} // Compile-time check

// NewCSVSource returns a CSV source for path. Only .csv files are accepted.
func NewCSVSource(path string) (*CSVSource, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, fmt.Errorf("please provide a valid .csv file: %s", path)
	}
	return &CSVSource{path: path}, nil
}

// Load implements contract.RecordSource.
func (s *CSVSource) Load(ctx context.Context) (schema.LoadResult, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return schema.LoadResult{}, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := ReadCSV(ctx, f)
	if err != nil {
		return schema.LoadResult{}, err
	}
	if res.Rejected > 0 {
		logrus.WithField("file", s.path).Warnf("Skipped %d invalid rows", res.Rejected)
	}
	return res, nil
}

// Describe implements contract.RecordSource.
func (s *CSVSource) Describe() string { return s.path }

// Close implements contract.RecordSource.
func (s *CSVSource) Close() error { return nil }

// ReadCSV parses records from r. The header is matched case-insensitively and
// extra columns are ignored.
func ReadCSV(ctx context.Context, r io.Reader) (schema.LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return schema.LoadResult{}, ErrEmptyCSV
	}
	if err != nil {
		return schema.LoadResult{}, fmt.Errorf("%w: %v", ErrEmptyCSV, err)
	}
	columns, err := headerIndex(header)
	if err != nil {
		return schema.LoadResult{}, err
	}

	var tracker loadTracker
	raw := make(map[string]string, len(columns))
	for n := 1; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return schema.LoadResult{}, err
			}
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				tracker.reject(&schema.RecordError{Row: parseErr.Line, Field: "line", Reason: parseErr.Err.Error()})
				continue
			}
			return schema.LoadResult{}, fmt.Errorf("failed to read CSV record %d: %w", n, err)
		}
		if isBlank(fields) {
			continue
		}
		row, _ := reader.FieldPos(0)

		clear(raw)
		for name, idx := range columns {
			if idx < len(fields) {
				raw[name] = fields[idx]
			}
		}
		p, err := schema.ValidateRecord(raw, row)
		if err != nil {
			tracker.reject(err)
			continue
		}
		tracker.accept(p)
	}

	if len(tracker.result.Records) == 0 {
		return tracker.result, ErrEmptyCSV
	}
	return tracker.result, nil
}

// headerIndex maps each record column to its position in the header.
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(schema.RecordColumns))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	columns := make(map[string]int, len(schema.RecordColumns))
	for _, col := range schema.RecordColumns {
		idx, ok := index[col]
		if !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrEmptyCSV, col)
		}
		columns[col] = idx
	}
	return columns, nil
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
