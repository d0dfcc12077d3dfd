package contract

import (
	"context"
	"time"

	"github.com/huangsam/stepviz/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecordSource is a mock implementation of RecordSource for testing.
type MockRecordSource struct {
	mock.Mock
}

var _ RecordSource = &MockRecordSource{} // Compile-time check

// Load implements the RecordSource interface.
func (m *MockRecordSource) Load(ctx context.Context) (schema.LoadResult, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(schema.LoadResult)
	return res, args.Error(1)
}

// Describe implements the RecordSource interface.
func (m *MockRecordSource) Describe() string {
	args := m.Called()
	return args.String(0)
}

// Close implements the RecordSource interface.
func (m *MockRecordSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockOutputWriter is a mock implementation of OutputWriter for testing.
type MockOutputWriter struct {
	mock.Mock
}

var _ OutputWriter = &MockOutputWriter{} // Compile-time check

// WriteCharts implements the OutputWriter interface.
func (m *MockOutputWriter) WriteCharts(inputs []schema.ChartRenderInput, cfg *Config, duration time.Duration) error {
	args := m.Called(inputs, cfg, duration)
	return args.Error(0)
}

// WriteExperiments implements the OutputWriter interface.
func (m *MockOutputWriter) WriteExperiments(summaries []schema.ExperimentSummary, cfg *Config) error {
	args := m.Called(summaries, cfg)
	return args.Error(0)
}

// WriteMetrics implements the OutputWriter interface.
func (m *MockOutputWriter) WriteMetrics(summaries []schema.MetricSummary, cfg *Config) error {
	args := m.Called(summaries, cfg)
	return args.Error(0)
}

// WriteSourceStatus implements the OutputWriter interface.
func (m *MockOutputWriter) WriteSourceStatus(status schema.SourceStatus, cfg *Config) error {
	args := m.Called(status, cfg)
	return args.Error(0)
}

// MockChartRenderer is a mock implementation of ChartRenderer for testing.
type MockChartRenderer struct {
	mock.Mock
}

var _ ChartRenderer = &MockChartRenderer{} // Compile-time check

// RenderCharts implements the ChartRenderer interface.
func (m *MockChartRenderer) RenderCharts(inputs []schema.ChartRenderInput, cfg *Config) ([]string, error) {
	args := m.Called(inputs, cfg)
	paths, _ := args.Get(0).([]string)
	return paths, args.Error(1)
}
