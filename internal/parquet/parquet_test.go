package parquet

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/huangsam/stepviz/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	s := parquet.SchemaOf(new(RecordRow))
	require.NotNil(t, s)

	for _, colName := range schema.RecordColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestWriteAndReadRecordsParquet(t *testing.T) {
	records := []schema.ExperimentDataPoint{
		{ExperimentID: "exp1", MetricName: "loss", Step: 0, Value: 1.5},
		{ExperimentID: "exp1", MetricName: "loss", Step: 10, Value: 0.75},
		{ExperimentID: "exp2", MetricName: "accuracy", Step: 10, Value: 0.9},
	}
	path := filepath.Join(t.TempDir(), "records.parquet")
	require.NoError(t, WriteRecordsParquet(ConvertRecords(records), path))

	rows, err := ReadRecordsParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, len(records))

	for i, row := range rows {
		p, err := row.ToDataPoint(i + 1)
		require.NoError(t, err)
		assert.Equal(t, records[i], p)
	}
}

func TestReadRecordsManyBatches(t *testing.T) {
	data := make([]RecordRow, 3*readBatchSize+7)
	for i := range data {
		data[i] = NewRecordRow("exp", "m", int64(i), float64(i))
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, data))

	rows, err := ReadRecords(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, len(data))
	assert.Equal(t, int64(len(data)-1), *rows[len(rows)-1].Step)
}

func TestReadRecordsCorrupt(t *testing.T) {
	_, err := ReadRecords(bytes.NewReader([]byte("definitely not parquet")))
	assert.Error(t, err)

	_, err = ReadRecordsParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestToDataPoint(t *testing.T) {
	id, metric, step, value := "exp1", "loss", int64(3), 0.5
	nan := math.NaN()
	empty := ""

	tests := []struct {
		name    string
		row     RecordRow
		field   string
		wantErr bool
	}{
		{"complete", RecordRow{&id, &metric, &step, &value}, "", false},
		{"missing id", RecordRow{nil, &metric, &step, &value}, schema.ColExperimentID, true},
		{"empty id", RecordRow{&empty, &metric, &step, &value}, schema.ColExperimentID, true},
		{"missing metric", RecordRow{&id, nil, &step, &value}, schema.ColMetricName, true},
		{"missing step", RecordRow{&id, &metric, nil, &value}, schema.ColStep, true},
		{"missing value", RecordRow{&id, &metric, &step, nil}, schema.ColValue, true},
		{"nan value", RecordRow{&id, &metric, &step, &nan}, schema.ColValue, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.row.ToDataPoint(4)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, schema.ErrMalformedRecord)
			var recErr *schema.RecordError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.field, recErr.Field)
			assert.Equal(t, 4, recErr.Row)
		})
	}
}

func TestConvertChartRows(t *testing.T) {
	inputs := []schema.ChartRenderInput{{
		Metric:  "loss",
		LineIDs: []string{"b", "a"},
		Rows: []schema.StepRow{
			{Step: 0, Values: map[string]float64{"a": 1, "b": 2}},
			{Step: 5, Values: map[string]float64{"a": 3}},
		},
	}}
	rows := ConvertChartRows(inputs)
	require.Len(t, rows, 3)
	assert.Equal(t, "b", *rows[0].ExperimentID)
	assert.Equal(t, "a", *rows[1].ExperimentID)
	assert.Equal(t, int64(5), *rows[2].Step)
	assert.Equal(t, 3.0, *rows[2].Value)
}

func TestWriteSummaryRows(t *testing.T) {
	dir := t.TempDir()

	exps := ConvertExperimentSummaries([]schema.ExperimentSummary{
		{ExperimentID: "exp1", Records: 3, Metrics: []string{"loss", "acc"}, MinStep: 0, MaxStep: 9},
	})
	expPath := filepath.Join(dir, "experiments.parquet")
	require.NoError(t, WriteRowsParquet(exps, expPath))
	readExps, err := parquet.ReadFile[ExperimentSummaryRow](expPath)
	require.NoError(t, err)
	assert.Equal(t, exps, readExps)

	metrics := ConvertMetricSummaries([]schema.MetricSummary{
		{Metric: "loss", Records: 3, Experiments: 2, MinStep: 0, MaxStep: 9, MinValue: 0.1, MaxValue: 2},
	})
	metricPath := filepath.Join(dir, "metrics.parquet")
	require.NoError(t, WriteRowsParquet(metrics, metricPath))
	readMetrics, err := parquet.ReadFile[MetricSummaryRow](metricPath)
	require.NoError(t, err)
	assert.Equal(t, metrics, readMetrics)
}
