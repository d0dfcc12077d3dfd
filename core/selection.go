package core

import (
	"slices"

	"github.com/huangsam/stepviz/schema"
)

// ExperimentIDs returns the distinct experiment ids in order of first appearance.
func ExperimentIDs(records []schema.ExperimentDataPoint) []string {
	return distinct(records, func(r schema.ExperimentDataPoint) string { return r.ExperimentID })
}

// MetricNames returns the distinct metric names in order of first appearance.
func MetricNames(records []schema.ExperimentDataPoint) []string {
	return distinct(records, func(r schema.ExperimentDataPoint) string { return r.MetricName })
}

func distinct(records []schema.ExperimentDataPoint, key func(schema.ExperimentDataPoint) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ToggleSelection removes id from the selection if present, else appends it.
// The input slice is never modified.
func ToggleSelection(selected []string, id string) []string {
	if i := slices.Index(selected, id); i >= 0 {
		return slices.Delete(slices.Clone(selected), i, i+1)
	}
	return append(slices.Clone(selected), id)
}

// NormalizeSelection trims empty entries and duplicates while keeping order.
func NormalizeSelection(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
