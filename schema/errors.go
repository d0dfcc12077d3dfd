package schema

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy shared by the pipeline, the sources and the computation channel.
var (
	// ErrInvalidArgument marks caller mistakes such as a nonpositive threshold.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrComputationUnavailable marks a background context that could not start or died.
	ErrComputationUnavailable = errors.New("computation unavailable")

	// ErrMalformedRecord marks an input row that is not a valid ExperimentDataPoint.
	ErrMalformedRecord = errors.New("malformed record")
)

// RecordError describes why a single input row was rejected.
type RecordError struct {
	Row    int    // 1-based position within its source: the line for CSV, the row otherwise (0 when unknown)
	Field  string // Offending column
	Reason string
}

func (e *RecordError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedRecord.
func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// WorkerError captures a failure inside the background computation context.
type WorkerError struct {
	Phase string
	Cause error
	Time  time.Time
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("%s failed during %s: %v", ErrComputationUnavailable, e.Phase, e.Cause)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *WorkerError) Unwrap() []error { return []error{ErrComputationUnavailable, e.Cause} }
