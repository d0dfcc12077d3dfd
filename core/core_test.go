package core

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/huangsam/stepviz/internal/contract"
	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// rec is shorthand for building a record in tests.
func rec(id, metric string, step int64, value float64) schema.ExperimentDataPoint {
	return schema.ExperimentDataPoint{ExperimentID: id, MetricName: metric, Step: step, Value: value}
}

func sampleRecords() []schema.ExperimentDataPoint {
	return []schema.ExperimentDataPoint{
		rec("exp1", "loss", 0, 1.0),
		rec("exp1", "loss", 1, 0.5),
		rec("exp2", "loss", 0, 2.0),
		rec("exp2", "accuracy", 1, 0.7),
		rec("exp1", "accuracy", 1, 0.6),
	}
}

func testConfig() *contract.Config {
	return &contract.Config{Threshold: 2000, QueueSize: 4, Render: schema.NoRender, Output: schema.TextOut}
}

// TestExecuteCharts tests the main chart entry point with a mocked source and writer.
func TestExecuteCharts(t *testing.T) {
	ctx := context.Background()
	src := &contract.MockRecordSource{}
	src.On("Load", mock.Anything).Return(schema.LoadResult{Records: sampleRecords()}, nil)
	src.On("Describe").Return("mock")

	ow := &contract.MockOutputWriter{}
	var written []schema.ChartRenderInput
	ow.On("WriteCharts", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(0).([]schema.ChartRenderInput) }).
		Return(nil)

	cfg := testConfig()
	cfg.Selected = []string{"exp2", "exp1"}
	require.NoError(t, ExecuteCharts(ctx, cfg, src, ow, nil))

	require.Len(t, written, 2)
	assert.Equal(t, "loss", written[0].Metric)
	assert.Equal(t, "Loss", written[0].Title)
	assert.Equal(t, []string{"exp2", "exp1"}, written[0].LineIDs)
	assert.Equal(t, schema.Palette[0], written[0].Lines[0].Color)
	assert.Equal(t, int64(0), written[0].Rows[0].Step)
	assert.Equal(t, "accuracy", written[1].Metric)

	src.AssertExpectations(t)
	ow.AssertExpectations(t)
}

// TestExecuteChartsDefaultSelection checks that an empty selection charts every experiment.
func TestExecuteChartsDefaultSelection(t *testing.T) {
	src := &contract.MockRecordSource{}
	src.On("Load", mock.Anything).Return(schema.LoadResult{Records: sampleRecords(), Rejected: 1, Errors: []error{errors.New("row 3: step: bad")}}, nil)
	src.On("Describe").Return("mock")

	ow := &contract.MockOutputWriter{}
	ow.On("WriteCharts", mock.MatchedBy(func(in []schema.ChartRenderInput) bool {
		return len(in) == 2 && len(in[0].LineIDs) == 2 && in[0].LineIDs[0] == "exp1"
	}), mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, ExecuteCharts(context.Background(), testConfig(), src, ow, nil))
	ow.AssertExpectations(t)
}

// TestExecuteChartsRender checks that the renderer is called when a format is set.
func TestExecuteChartsRender(t *testing.T) {
	src := &contract.MockRecordSource{}
	src.On("Load", mock.Anything).Return(schema.LoadResult{Records: sampleRecords()}, nil)
	src.On("Describe").Return("mock")

	ow := &contract.MockOutputWriter{}
	ow.On("WriteCharts", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	r := &contract.MockChartRenderer{}
	r.On("RenderCharts", mock.Anything, mock.Anything).Return([]string{"charts/loss.svg"}, nil)

	cfg := testConfig()
	cfg.Render = schema.SVGRender
	require.NoError(t, ExecuteCharts(context.Background(), cfg, src, ow, r))
	r.AssertExpectations(t)

	failing := &contract.MockChartRenderer{}
	failing.On("RenderCharts", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
	assert.Error(t, ExecuteCharts(context.Background(), cfg, src, ow, failing))
}

// TestExecuteChartsLoadError ensures source failures surface as errors.
func TestExecuteChartsLoadError(t *testing.T) {
	src := &contract.MockRecordSource{}
	src.On("Load", mock.Anything).Return(schema.LoadResult{}, errors.New("no such file"))
	src.On("Describe").Return("missing.csv")

	ow := &contract.MockOutputWriter{}
	err := ExecuteCharts(context.Background(), testConfig(), src, ow, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.csv")
	ow.AssertNotCalled(t, "WriteCharts", mock.Anything, mock.Anything, mock.Anything)
}

// TestExecuteSummaries covers the experiments and metrics entry points.
func TestExecuteSummaries(t *testing.T) {
	src := &contract.MockRecordSource{}
	src.On("Load", mock.Anything).Return(schema.LoadResult{Records: sampleRecords()}, nil)
	src.On("Describe").Return("mock")

	ow := &contract.MockOutputWriter{}
	ow.On("WriteExperiments", mock.MatchedBy(func(s []schema.ExperimentSummary) bool { return len(s) == 2 }), mock.Anything).Return(nil)
	ow.On("WriteMetrics", mock.MatchedBy(func(s []schema.MetricSummary) bool { return len(s) == 2 }), mock.Anything).Return(nil)

	cfg := testConfig()
	require.NoError(t, ExecuteExperiments(context.Background(), cfg, src, ow))
	require.NoError(t, ExecuteMetrics(context.Background(), cfg, src, ow))
	ow.AssertExpectations(t)
}
