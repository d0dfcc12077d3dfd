package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/stepviz/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("github.com/huangsam/stepviz/core")

// ErrWorkerClosed is returned by Submit after the worker has been closed.
var ErrWorkerClosed = errors.New("worker closed")

// ComputeFunc computes chart data for one selection.
type ComputeFunc func(ctx context.Context, records []schema.ExperimentDataPoint, selectedIDs []string) (schema.DownsampledSeries, error)

// ThresholdCompute returns the default ComputeFunc, ComputeCharts at a fixed threshold.
func ThresholdCompute(threshold int) ComputeFunc {
	return func(ctx context.Context, records []schema.ExperimentDataPoint, selectedIDs []string) (schema.DownsampledSeries, error) {
		return ComputeCharts(ctx, records, selectedIDs, threshold)
	}
}

// ComputeRequest is one message to the background context.
type ComputeRequest struct {
	Seq         uint64
	Records     []schema.ExperimentDataPoint
	SelectedIDs []string
}

// ComputeResponse is the one-shot reply to a ComputeRequest.
type ComputeResponse struct {
	Seq         uint64
	SelectedIDs []string
	Result      schema.DownsampledSeries
	Err         error
	Duration    time.Duration
}

// Backend is a background computation context reached only through messages.
type Backend interface {
	// Submit enqueues a request without blocking.
	Submit(req ComputeRequest) error

	// Responses delivers one response per processed request, in processing order.
	Responses() <-chan ComputeResponse

	// Done is closed once the backend stops processing for any reason.
	Done() <-chan struct{}

	// Close cancels pending work and waits for the backend to stop.
	Close()
}

// Worker is the default Backend: one goroutine that processes requests in
// issuance order. It owns no shared state beyond its queue.
type Worker struct {
	compute   ComputeFunc
	queue     chan ComputeRequest
	responses chan ComputeResponse

	ctx    context.Context
	cancel context.CancelFunc
	doneCh chan struct{}

	submitMu  sync.Mutex
	closeOnce sync.Once
}

// StartWorker launches the background goroutine. The worker stops when ctx is
// cancelled or Close is called.
func StartWorker(ctx context.Context, compute ComputeFunc, queueSize int) (*Worker, error) {
	if compute == nil {
		return nil, fmt.Errorf("%w: compute function is required", schema.ErrInvalidArgument)
	}
	if queueSize <= 0 {
		return nil, fmt.Errorf("%w: queue size must be greater than 0 (received %d)", schema.ErrInvalidArgument, queueSize)
	}
	wctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		compute:   compute,
		queue:     make(chan ComputeRequest, queueSize),
		responses: make(chan ComputeResponse, queueSize),
		ctx:       wctx,
		cancel:    cancel,
		doneCh:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Submit enqueues req. When the queue is full the oldest queued request is
// dropped; it could only have produced a stale result anyway.
func (w *Worker) Submit(req ComputeRequest) error {
	w.submitMu.Lock()
	defer w.submitMu.Unlock()

	select {
	case <-w.doneCh:
		return ErrWorkerClosed
	default:
	}

	for {
		select {
		case w.queue <- req:
			computeRequests.Inc()
			return nil
		default:
		}
		select {
		case dropped := <-w.queue:
			computeSuperseded.Inc()
			logrus.WithField("seq", dropped.Seq).Debug("Dropped queued compute request")
		default:
		}
	}
}

// Responses implements Backend.
func (w *Worker) Responses() <-chan ComputeResponse { return w.responses }

// Done implements Backend.
func (w *Worker) Done() <-chan struct{} { return w.doneCh }

// Close implements Backend. It is safe to call more than once.
func (w *Worker) Close() {
	w.closeOnce.Do(w.cancel)
	<-w.doneCh
}

func (w *Worker) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.ctx.Done():
			return
		case req := <-w.queue:
			resp := w.process(req)
			select {
			case w.responses <- resp:
			case <-w.ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) process(req ComputeRequest) ComputeResponse {
	ctx := WithRequestSeq(w.ctx, req.Seq)
	ctx, span := tracer.Start(ctx, "compute.Run", trace.WithAttributes(
		attribute.Int64("stepviz.seq", int64(req.Seq)),
		attribute.Int("stepviz.records", len(req.Records)),
		attribute.Int("stepviz.selected", len(req.SelectedIDs)),
	))
	defer span.End()

	computeInFlight.Inc()
	defer computeInFlight.Dec()
	timer := prometheus.NewTimer(computeDuration)
	start := time.Now()

	result, err := w.safeCompute(ctx, req)
	timer.ObserveDuration()

	resp := ComputeResponse{
		Seq:         req.Seq,
		SelectedIDs: req.SelectedIDs,
		Result:      result,
		Err:         err,
		Duration:    time.Since(start),
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			span.SetStatus(codes.Unset, "cancelled")
			logrus.WithField("seq", req.Seq).Debug("Chart computation cancelled")
			return resp
		}
		var werr *schema.WorkerError
		if errors.As(err, &werr) {
			computeFailures.WithLabelValues(werr.Phase).Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logrus.WithField("seq", req.Seq).WithError(err).Warn("Chart computation failed")
		return resp
	}
	span.SetAttributes(attribute.Int("stepviz.metrics", len(result)))
	return resp
}

// safeCompute runs the compute function and turns a panic into an error so a
// bad computation can never take the worker down with it.
func (w *Worker) safeCompute(ctx context.Context, req ComputeRequest) (result schema.DownsampledSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &schema.WorkerError{Phase: "panic", Cause: fmt.Errorf("%v", r), Time: time.Now()}
		}
	}()
	result, err = w.compute(ctx, req.Records, req.SelectedIDs)
	if err != nil {
		return nil, &schema.WorkerError{Phase: "compute", Cause: err, Time: time.Now()}
	}
	return result, nil
}
