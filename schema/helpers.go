package schema

import (
	"math"
	"strconv"
	"strings"
)

// Validate checks the typed invariants of a record that did not come through ValidateRecord,
// e.g. rows scanned from a database or decoded from Parquet.
func (p ExperimentDataPoint) Validate() error {
	if strings.TrimSpace(p.ExperimentID) == "" {
		return &RecordError{Field: ColExperimentID, Reason: "must be a non-empty string"}
	}
	if strings.TrimSpace(p.MetricName) == "" {
		return &RecordError{Field: ColMetricName, Reason: "must be a non-empty string"}
	}
	if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
		return &RecordError{Field: ColValue, Reason: "must be a finite number"}
	}
	return nil
}

// ValidateRecord converts a raw row keyed by column name into an ExperimentDataPoint.
// Rows with missing or mistyped cells are rejected, never coerced.
func ValidateRecord(raw map[string]string, row int) (ExperimentDataPoint, error) {
	var p ExperimentDataPoint

	expID, ok := raw[ColExperimentID]
	if !ok || strings.TrimSpace(expID) == "" {
		return p, &RecordError{Row: row, Field: ColExperimentID, Reason: "missing or empty"}
	}
	metric, ok := raw[ColMetricName]
	if !ok || strings.TrimSpace(metric) == "" {
		return p, &RecordError{Row: row, Field: ColMetricName, Reason: "missing or empty"}
	}

	stepStr, ok := raw[ColStep]
	if !ok {
		return p, &RecordError{Row: row, Field: ColStep, Reason: "missing"}
	}
	step, err := ParseStep(stepStr)
	if err != nil {
		return p, &RecordError{Row: row, Field: ColStep, Reason: err.Error()}
	}

	valueStr, ok := raw[ColValue]
	if !ok {
		return p, &RecordError{Row: row, Field: ColValue, Reason: "missing"}
	}
	value, err := ParseValue(valueStr)
	if err != nil {
		return p, &RecordError{Row: row, Field: ColValue, Reason: err.Error()}
	}

	p = ExperimentDataPoint{
		ExperimentID: strings.TrimSpace(expID),
		MetricName:   strings.TrimSpace(metric),
		Step:         step,
		Value:        value,
	}
	return p, nil
}

// ParseStep parses an integer step. Integral float literals such as "10.0" are accepted.
func ParseStep(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &strconv.NumError{Func: "ParseStep", Num: s, Err: strconv.ErrSyntax}
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, &strconv.NumError{Func: "ParseStep", Num: s, Err: strconv.ErrRange}
	}
	return int64(f), nil
}

// ParseValue parses a finite float value.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &strconv.NumError{Func: "ParseValue", Num: s, Err: strconv.ErrSyntax}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &strconv.NumError{Func: "ParseValue", Num: s, Err: strconv.ErrRange}
	}
	return f, nil
}
