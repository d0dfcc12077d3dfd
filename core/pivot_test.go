package core

import (
	"testing"

	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPivot(t *testing.T) {
	t.Run("empty selection yields no metrics", func(t *testing.T) {
		assert.Empty(t, Pivot(sampleRecords(), nil))
		assert.Empty(t, Pivot(sampleRecords(), []string{}))
	})

	t.Run("groups by metric then step", func(t *testing.T) {
		got := Pivot(sampleRecords(), []string{"exp1", "exp2"})
		require.Len(t, got, 2)
		assert.Equal(t, []string{"loss", "accuracy"}, []string{got[0].Metric, got[1].Metric})

		loss := got[0].Steps
		assert.Equal(t, map[string]float64{"exp1": 1.0, "exp2": 2.0}, loss[0].Values)
		assert.Equal(t, map[string]float64{"exp1": 0.5}, loss[1].Values)

		acc := got[1].Steps
		assert.Equal(t, map[string]float64{"exp1": 0.6, "exp2": 0.7}, acc[1].Values)
	})

	t.Run("filters unselected experiments", func(t *testing.T) {
		got := Pivot(sampleRecords(), []string{"exp2"})
		for _, m := range got {
			for _, row := range m.Steps {
				for id := range row.Values {
					assert.Equal(t, "exp2", id)
				}
			}
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		records := []schema.ExperimentDataPoint{
			rec("exp1", "loss", 5, 1.0),
			rec("exp1", "loss", 5, 3.0),
		}
		got := Pivot(records, []string{"exp1"})
		require.Len(t, got, 1)
		assert.Equal(t, 3.0, got[0].Steps[5].Values["exp1"])
		assert.Equal(t, int64(5), got[0].Steps[5].Step)
	})

	t.Run("incomplete records contribute nothing", func(t *testing.T) {
		records := []schema.ExperimentDataPoint{
			{ExperimentID: "", MetricName: "loss", Step: 1, Value: 1},
			{ExperimentID: "exp1", MetricName: "", Step: 1, Value: 1},
		}
		assert.Empty(t, Pivot(records, []string{"exp1", ""}))
	})
}
