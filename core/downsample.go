package core

import (
	"fmt"
	"slices"

	"github.com/huangsam/stepviz/schema"
)

// Downsample reduces a step-sorted series to at most threshold rows by averaging
// contiguous buckets of ceil(len/threshold) rows.
//
// The output row for a bucket takes the step of the bucket's first row. Each
// experiment value is averaged over only the rows in the bucket that define it,
// summing left to right so results are reproducible.
//
// Series that already fit are returned as-is in a fresh slice header. Rows are
// shared with the input and must be treated as read-only.
func Downsample(rows []schema.StepRow, threshold int) ([]schema.StepRow, error) {
	if len(rows) == 0 {
		return []schema.StepRow{}, nil
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: downsample threshold must be greater than 0 (received %d)", schema.ErrInvalidArgument, threshold)
	}
	if len(rows) <= threshold {
		return slices.Clone(rows), nil
	}

	total := len(rows)
	bucketSize := (total + threshold - 1) / threshold
	out := make([]schema.StepRow, 0, (total+bucketSize-1)/bucketSize)

	for start := 0; start < total; start += bucketSize {
		end := min(start+bucketSize, total)
		out = append(out, averageBucket(rows[start:end]))
	}
	return out, nil
}

// averageBucket collapses one bucket into a single row.
func averageBucket(bucket []schema.StepRow) schema.StepRow {
	type acc struct {
		sum   float64
		count int
	}

	var order []string
	sums := make(map[string]*acc)
	for _, row := range bucket {
		for id := range row.Values {
			if _, ok := sums[id]; !ok {
				sums[id] = &acc{}
				order = append(order, id)
			}
		}
	}

	// Accumulate per id in row order so floating-point summation is stable.
	for _, id := range order {
		a := sums[id]
		for _, row := range bucket {
			if v, ok := row.Values[id]; ok {
				a.sum += v
				a.count++
			}
		}
	}

	values := make(map[string]float64, len(order))
	for _, id := range order {
		a := sums[id]
		values[id] = a.sum / float64(a.count)
	}
	return schema.StepRow{Step: bucket[0].Step, Values: values}
}
