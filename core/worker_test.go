package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/stepviz/schema"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWorkerValidation(t *testing.T) {
	_, err := StartWorker(context.Background(), nil, 1)
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	_, err = StartWorker(context.Background(), ThresholdCompute(10), 0)
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)
}

func TestWorkerProcessesInOrder(t *testing.T) {
	w, err := StartWorker(context.Background(), ThresholdCompute(10), 4)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Submit(ComputeRequest{Seq: 1, Records: sampleRecords(), SelectedIDs: []string{"exp1"}}))
	require.NoError(t, w.Submit(ComputeRequest{Seq: 2, Records: sampleRecords(), SelectedIDs: []string{"exp2"}}))

	for _, want := range []uint64{1, 2} {
		select {
		case resp := <-w.Responses():
			assert.Equal(t, want, resp.Seq)
			assert.NoError(t, resp.Err)
			assert.NotEmpty(t, resp.Result)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for response")
		}
	}
}

func TestWorkerRecoversPanic(t *testing.T) {
	compute := func(context.Context, []schema.ExperimentDataPoint, []string) (schema.DownsampledSeries, error) {
		panic("kaboom")
	}
	w, err := StartWorker(context.Background(), compute, 1)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Submit(ComputeRequest{Seq: 7, SelectedIDs: []string{"a"}}))
	resp := <-w.Responses()
	assert.ErrorIs(t, resp.Err, schema.ErrComputationUnavailable)
	var werr *schema.WorkerError
	require.ErrorAs(t, resp.Err, &werr)
	assert.Equal(t, "panic", werr.Phase)
}

func TestWorkerWrapsComputeError(t *testing.T) {
	cause := errors.New("bad data")
	compute := func(context.Context, []schema.ExperimentDataPoint, []string) (schema.DownsampledSeries, error) {
		return nil, cause
	}
	w, err := StartWorker(context.Background(), compute, 1)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Submit(ComputeRequest{Seq: 1}))
	resp := <-w.Responses()
	assert.ErrorIs(t, resp.Err, cause)
	assert.ErrorIs(t, resp.Err, schema.ErrComputationUnavailable)
}

func TestWorkerDropsOldestWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan uint64, 8)
	compute := func(ctx context.Context, _ []schema.ExperimentDataPoint, _ []string) (schema.DownsampledSeries, error) {
		started <- RequestSeq(ctx)
		<-release
		return schema.DownsampledSeries{}, nil
	}
	w, err := StartWorker(context.Background(), compute, 1)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Submit(ComputeRequest{Seq: 1}))
	assert.Equal(t, uint64(1), <-started)

	require.NoError(t, w.Submit(ComputeRequest{Seq: 2}))
	require.NoError(t, w.Submit(ComputeRequest{Seq: 3})) // queue holds one, so 2 is dropped
	close(release)

	var seqs []uint64
	for range 2 {
		seqs = append(seqs, (<-w.Responses()).Seq)
	}
	assert.Equal(t, []uint64{1, 3}, seqs)
}

func TestWorkerClose(t *testing.T) {
	w, err := StartWorker(context.Background(), ThresholdCompute(10), 1)
	require.NoError(t, err)
	w.Close()
	w.Close()

	select {
	case <-w.Done():
	default:
		t.Fatal("worker should be done after Close")
	}
	assert.ErrorIs(t, w.Submit(ComputeRequest{Seq: 1}), ErrWorkerClosed)
}

func TestWorkerCancelledComputationIsQuiet(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()
	failuresBefore := testutil.ToFloat64(computeFailures.WithLabelValues("compute"))

	started := make(chan struct{})
	compute := func(ctx context.Context, _ []schema.ExperimentDataPoint, _ []string) (schema.DownsampledSeries, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	w, err := StartWorker(context.Background(), compute, 1)
	require.NoError(t, err)
	require.NoError(t, w.Submit(ComputeRequest{Seq: 1, Records: sampleRecords(), SelectedIDs: []string{"exp1"}}))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("computation never started")
	}
	w.Close()

	for _, entry := range hook.AllEntries() {
		assert.Greater(t, entry.Level, logrus.WarnLevel, "unexpected log: %s", entry.Message)
	}
	assert.Equal(t, failuresBefore, testutil.ToFloat64(computeFailures.WithLabelValues("compute")))
}
