package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/internal/parquet"
	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testConfig(output schema.OutputMode, file string) *contract.Config {
	return &contract.Config{
		Output:     output,
		OutputFile: file,
		Precision:  2,
		Threshold:  100,
		Width:      120,
	}
}

func sampleInputs() []schema.ChartRenderInput {
	return []schema.ChartRenderInput{
		{
			Metric: "train_loss",
			Title:  "Train Loss",
			Rows: []schema.StepRow{
				{Step: 0, Values: map[string]float64{"exp1": 1.0, "exp2": 2.0}},
				{Step: 5, Values: map[string]float64{"exp1": 0.5}},
			},
			LineIDs:   []string{"exp1", "exp2"},
			Lines:     []schema.LineSpec{{ID: "exp1", Color: "#8884d8"}, {ID: "exp2", Color: "#82ca9d"}},
			YDomain:   [2]float64{0.35, 2.15},
			RawPoints: 4,
		},
	}
}

func TestWriteChartTable(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, intFmt := createFormatters(2)
	err := writeChartTable(&buf, sampleInputs(), testConfig(schema.TextOut, ""), fmtFloat, intFmt, time.Second)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "train_loss")
	assert.Contains(t, out, "4 → 2")
	assert.Contains(t, out, "[0.35, 2.15]")
	assert.Contains(t, out, "0..5")
	assert.Contains(t, out, contract.WarnValue)
	assert.Contains(t, out, "Showing 1 charts for 2 experiments (threshold: 100 points)")
}

func TestWriteChartCSVSkipsMissingValues(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeChartCSV(&buf, sampleInputs(), fmtFloat))

	expected := "experiment_id,metric_name,step,value\n" +
		"exp1,train_loss,0,1.00\n" +
		"exp2,train_loss,0,2.00\n" +
		"exp1,train_loss,5,0.50\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteChartResults(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "charts.json")
		require.NoError(t, WriteChartResults(sampleInputs(), testConfig(schema.JSONOut, path), time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded []schema.ChartRenderInput
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, sampleInputs(), decoded)
	})

	t.Run("json empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, WriteChartResults(nil, testConfig(schema.JSONOut, path), time.Second))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", strings.TrimSpace(string(data)))
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "charts.parquet")
		require.NoError(t, WriteChartResults(sampleInputs(), testConfig(schema.ParquetOut, path), time.Second))

		rows, err := parquet.ReadRecordsParquet(path)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})

	t.Run("parquet without file", func(t *testing.T) {
		err := WriteChartResults(sampleInputs(), testConfig(schema.ParquetOut, ""), time.Second)
		assert.Error(t, err)
	})

	t.Run("text", func(t *testing.T) {
		path := filepath.Join(dir, "charts.txt")
		require.NoError(t, WriteChartResults(sampleInputs(), testConfig(schema.TextOut, path), time.Second))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Computed in")
	})
}

func TestWriteSummaries(t *testing.T) {
	exps := []schema.ExperimentSummary{
		{ExperimentID: "exp1", Records: 4, Metrics: []string{"loss", "accuracy"}, MinStep: 0, MaxStep: 10},
	}
	metrics := []schema.MetricSummary{
		{Metric: "loss", Records: 3, Experiments: 2, MinStep: 0, MaxStep: 10, MinValue: 0.5, MaxValue: 2},
	}

	t.Run("experiment csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeExperimentCSV(&buf, exps))
		assert.Equal(t, "experiment_id,records,metrics,min_step,max_step\nexp1,4,loss;accuracy,0,10\n", buf.String())
	})

	t.Run("metric csv", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, _ := createFormatters(2)
		require.NoError(t, writeMetricCSV(&buf, metrics, fmtFloat))
		assert.Equal(t, "metric,records,experiments,min_step,max_step,min_value,max_value\nloss,3,2,0,10,0.50,2.00\n", buf.String())
	})

	t.Run("experiment table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeExperimentTable(&buf, exps, testConfig(schema.TextOut, ""), "%d"))
		assert.Contains(t, buf.String(), "exp1")
		assert.Contains(t, buf.String(), "Found 1 experiments (total records: 4)")
	})

	t.Run("metric table", func(t *testing.T) {
		var buf bytes.Buffer
		fmtFloat, intFmt := createFormatters(2)
		require.NoError(t, writeMetricTable(&buf, metrics, testConfig(schema.TextOut, ""), fmtFloat, intFmt))
		assert.Contains(t, buf.String(), "loss")
		assert.Contains(t, buf.String(), "Found 1 metrics")
	})

	t.Run("parquet files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, WriteExperimentSummaries(exps, testConfig(schema.ParquetOut, filepath.Join(dir, "e.parquet"))))
		require.NoError(t, WriteMetricSummaries(metrics, testConfig(schema.ParquetOut, filepath.Join(dir, "m.parquet"))))
		assert.FileExists(t, filepath.Join(dir, "e.parquet"))
		assert.FileExists(t, filepath.Join(dir, "m.parquet"))
	})

	t.Run("json nil", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "e.json")
		require.NoError(t, WriteExperimentSummaries(nil, testConfig(schema.JSONOut, path)))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", strings.TrimSpace(string(data)))
	})
}

func TestWriteStatus(t *testing.T) {
	status := schema.SourceStatus{
		Backend: "sqlite", Table: "experiment_metrics", Connected: true,
		TotalRecords: 10, Experiments: 2, Metrics: 3, SchemaVersion: 2,
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatusText(&buf, status))
	assert.Contains(t, buf.String(), "Backend:        sqlite")
	assert.Contains(t, buf.String(), "Schema version: 2 (OK)")

	buf.Reset()
	require.NoError(t, writeStatusCSV(&buf, status))
	assert.Contains(t, buf.String(), "total_records,10\n")

	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, NewOutWriter().WriteSourceStatus(status, testConfig(schema.JSONOut, path)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded schema.SourceStatus
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, status, decoded)
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{40, 15},
		{100, 30},
		{300, 60},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxTableNameWidth(&contract.Config{Width: tt.width}))
	}
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "10", formatPoints(10, 10, "%d"))
	assert.Equal(t, "10 → 3", formatPoints(10, 3, "%d"))
	assert.Equal(t, "-", formatStepRange(nil))
}
