package core

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/stepviz/schema"
	"github.com/sirupsen/logrus"
)

// ErrChannelClosed is reported for requests and waits after Close.
var ErrChannelClosed = errors.New("computation channel closed")

// LaunchFunc creates the background context for a channel.
type LaunchFunc func(ctx context.Context, compute ComputeFunc, queueSize int) (Backend, error)

// ChannelOptions configures a Channel. Zero values pick the defaults.
type ChannelOptions struct {
	Threshold int
	QueueSize int
	Compute   ComputeFunc // Defaults to ThresholdCompute(Threshold)
	Launch    LaunchFunc  // Defaults to StartWorker
}

const defaultQueueSize = 16

// LaunchWorker is the default LaunchFunc.
func LaunchWorker(ctx context.Context, compute ComputeFunc, queueSize int) (Backend, error) {
	w, err := StartWorker(ctx, compute, queueSize)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Channel connects a view to a background computation context. Every request
// gets a sequence number and only the outcome of the newest one is applied to
// the view state.
type Channel struct {
	ctx     context.Context // Parent of the backend; its cancellation is a shutdown
	mu      sync.Mutex
	state   ViewState
	seq     uint64
	backend Backend
	lostErr error // Set when the backend could not be launched
	closed  bool
	notify  chan struct{}
	subs    map[int]chan ViewState
	nextSub int

	closeCh      chan struct{}
	dispatchDone chan struct{}
	closeOnce    sync.Once
}

// NewChannel creates the background context once and starts delivering its
// responses. A launch failure is not returned: the channel starts in the error
// state instead, the same way it would if the worker died later.
func NewChannel(ctx context.Context, opts ChannelOptions) *Channel {
	if opts.Threshold <= 0 {
		opts.Threshold = schema.DownsampleThreshold
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Compute == nil {
		opts.Compute = ThresholdCompute(opts.Threshold)
	}
	if opts.Launch == nil {
		opts.Launch = LaunchWorker
	}

	c := &Channel{
		ctx:          ctx,
		state:        ViewState{Status: StatusIdle, Result: schema.DownsampledSeries{}},
		notify:       make(chan struct{}),
		subs:         make(map[int]chan ViewState),
		closeCh:      make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}

	backend, err := opts.Launch(ctx, opts.Compute, opts.QueueSize)
	if err != nil {
		computeFailures.WithLabelValues("start").Inc()
		logrus.WithError(err).Error("Could not start the computation worker")
		c.lostErr = &schema.WorkerError{Phase: "start", Cause: err, Time: time.Now()}
		c.state = Reduce(c.state, WorkerLost{Err: c.lostErr})
		close(c.dispatchDone)
		return c
	}
	c.backend = backend
	go c.dispatch()
	return c
}

// Request issues a computation for selectedIDs over records and returns its
// sequence number. An empty selection is answered immediately with an empty
// result and nothing is dispatched.
func (c *Channel) Request(records []schema.ExperimentDataPoint, selectedIDs []string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	seq := c.seq
	if len(selectedIDs) == 0 {
		selectionsCleared.Inc()
		c.applyLocked(SelectionCleared{Seq: seq})
		return seq
	}

	ids := slices.Clone(selectedIDs)
	c.applyLocked(RequestIssued{Seq: seq, Selection: ids})

	switch {
	case c.closed:
		c.applyLocked(ComputationFailed{Seq: seq, Err: ErrChannelClosed})
	case c.backend == nil:
		c.applyLocked(WorkerLost{Err: c.lostErr})
	default:
		req := ComputeRequest{Seq: seq, Records: records, SelectedIDs: ids}
		if err := c.backend.Submit(req); err != nil {
			c.applyLocked(ComputationFailed{Seq: seq, Err: &schema.WorkerError{Phase: "submit", Cause: err, Time: time.Now()}})
		}
	}
	return seq
}

// Snapshot returns a copy of the current view state.
func (c *Channel) Snapshot() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Subscribe returns a channel that receives the view state after every change.
// A slow reader only ever sees the most recent state. The returned function
// unsubscribes; the channel is also closed when the Channel closes.
func (c *Channel) Subscribe() (<-chan ViewState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan ViewState, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.Clone()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Wait blocks until the outcome of request seq, or of a newer one, is applied.
// It returns ErrChannelClosed if the channel closes before that happens.
func (c *Channel) Wait(ctx context.Context, seq uint64) (ViewState, error) {
	for {
		c.mu.Lock()
		if c.state.Applied >= seq && !c.state.Computing {
			st := c.state.Clone()
			c.mu.Unlock()
			return st, nil
		}
		if c.closed {
			c.mu.Unlock()
			return ViewState{}, ErrChannelClosed
		}
		notify := c.notify
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return ViewState{}, ctx.Err()
		case <-notify:
		}
	}
}

// Close tears down the background context, cancelling any pending work.
// It is safe to call more than once.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.closeCh)
		if c.state.Computing {
			c.state.Computing = false
			c.state.Status = StatusIdle
		}
		c.broadcastLocked()
		for id, sub := range c.subs {
			delete(c.subs, id)
			close(sub)
		}
		c.mu.Unlock()

		<-c.dispatchDone
		if c.backend != nil {
			c.backend.Close()
		}
	})
}

func (c *Channel) dispatch() {
	defer close(c.dispatchDone)
	for {
		select {
		case <-c.closeCh:
			return
		case resp := <-c.backend.Responses():
			c.deliver(resp)
		case <-c.backend.Done():
			select {
			case <-c.closeCh:
				return
			default:
			}
			if err := c.ctx.Err(); err != nil {
				c.mu.Lock()
				c.applyLocked(WorkerLost{Err: &schema.WorkerError{Phase: "cancel", Cause: err, Time: time.Now()}})
				c.mu.Unlock()
				logrus.WithError(err).Debug("Computation worker shut down")
				return
			}
			c.mu.Lock()
			c.applyLocked(WorkerLost{Err: &schema.WorkerError{Phase: "exit", Cause: errors.New("worker stopped unexpectedly"), Time: time.Now()}})
			c.mu.Unlock()
			logrus.Error("Computation worker stopped unexpectedly")
			return
		}
	}
}

func (c *Channel) deliver(resp ComputeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resp.Seq != c.state.Latest {
		computeSuperseded.Inc()
		logrus.WithFields(logrus.Fields{"seq": resp.Seq, "latest": c.state.Latest}).Debug("Discarded superseded result")
		return
	}
	if resp.Err != nil {
		c.applyLocked(ComputationFailed{Seq: resp.Seq, Err: resp.Err})
		return
	}
	logrus.WithFields(logrus.Fields{"seq": resp.Seq, "metrics": len(resp.Result), "duration": resp.Duration}).Debug("Applied chart result")
	c.applyLocked(ResultDelivered{Seq: resp.Seq, Selection: resp.SelectedIDs, Result: resp.Result})
}

// applyLocked reduces e into the state and notifies waiters. c.mu must be held.
func (c *Channel) applyLocked(e Event) {
	c.state = Reduce(c.state, e)
	c.broadcastLocked()
}

func (c *Channel) broadcastLocked() {
	close(c.notify)
	c.notify = make(chan struct{})
	if len(c.subs) == 0 {
		return
	}
	st := c.state.Clone()
	for _, sub := range c.subs {
		select {
		case <-sub:
		default:
		}
		sub <- st
	}
}
