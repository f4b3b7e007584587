package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

const defaultPollInterval = 500 * time.Millisecond

// Listener polls every FIFO queue once per cycle and hands each popped
// message to a freshly created Processor. Delivery is at-most-once: a message
// whose processor fails is logged and dropped.
type Listener struct {
	list         *ListQueue
	newProcessor ProcessorFactory
	names        []QueueName
	interval     time.Duration
	logger       logger.Logger
	metrics      *MetricsCollector
	running      atomic.Bool
	cycles       atomic.Int64
}

// ListenerOption configures a Listener.
type ListenerOption func(*Listener)

// WithPollInterval sets the pause between cycles.
func WithPollInterval(d time.Duration) ListenerOption {
	return func(l *Listener) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithQueueNames restricts polling to names.
func WithQueueNames(names ...QueueName) ListenerOption {
	return func(l *Listener) {
		if len(names) > 0 {
			l.names = append([]QueueName(nil), names...)
		}
	}
}

// WithListenerLogger sets the listener logger.
func WithListenerLogger(log logger.Logger) ListenerOption {
	return func(l *Listener) { l.logger = logger.OrDiscard(log) }
}

// WithListenerMetrics sets the collector dispatches are recorded on.
func WithListenerMetrics(mc *MetricsCollector) ListenerOption {
	return func(l *Listener) {
		if mc != nil {
			l.metrics = mc
		}
	}
}

// NewListener creates a listener draining list. newProcessor is called once
// per popped message.
func NewListener(list *ListQueue, newProcessor ProcessorFactory, opts ...ListenerOption) *Listener {
	l := &Listener{
		list:         list,
		newProcessor: newProcessor,
		names:        AllQueueNames(),
		interval:     defaultPollInterval,
		logger:       logger.Discard,
		metrics:      list.metrics,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run polls until ctx is cancelled and returns nil once stopped. A cycle that
// has started is always allowed to finish, including its dispatches.
func (l *Listener) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("listener is already running")
	}
	defer l.running.Store(false)

	l.logger.Info("Listener started", "queues", l.names, "interval", l.interval)
	defer l.logger.Info("Listener stopped", "cycles", l.cycles.Load())

	cycleCtx := context.WithoutCancel(ctx)
	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := l.Cycle(cycleCtx); err != nil {
			l.logger.Warn("Listener cycle completed with errors", "error", err)
		}

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

// Cycle pops at most one message from every queue concurrently and waits
// for all dispatches. Failures on one queue never affect the others; they
// are collected into the returned error.
func (l *Listener) Cycle(ctx context.Context) error {
	errs := make([]error, len(l.names))

	var g errgroup.Group
	for i, name := range l.names {
		g.Go(func() error {
			errs[i] = l.poll(ctx, name)
			return nil
		})
	}
	_ = g.Wait()
	l.cycles.Add(1)

	multi := apperrors.NewMultiError()
	for _, err := range errs {
		multi.Add(err)
	}
	return multi.ErrorOrNil()
}

// Running reports whether Run is active.
func (l *Listener) Running() bool { return l.running.Load() }

// Cycles returns the number of completed cycles.
func (l *Listener) Cycles() int64 { return l.cycles.Load() }

// Stats returns the counters of the listener's collector.
func (l *Listener) Stats() Stats { return l.metrics.Snapshot() }

func (l *Listener) poll(ctx context.Context, name QueueName) error {
	msg, ok, err := l.list.Receive(ctx, name)
	if err != nil {
		l.logger.Error("Failed to poll queue", "queue", name, "error", err)
		return fmt.Errorf("poll %s: %w", name, err)
	}
	if !ok {
		return nil
	}
	return l.dispatch(ctx, name, msg)
}

func (l *Listener) dispatch(ctx context.Context, name QueueName, msg string) (err error) {
	id := uuid.NewString()
	ctx = withDispatchID(ctx, id)
	ctx, span := startSpan(ctx, "listener.dispatch", ListQueueType, name)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Newf(apperrors.ErrProcessingFailed, "processor panicked on %s: %v", name, r)
		}
		l.metrics.RecordDispatch(ctx, name, err, time.Since(start))
		endSpan(span, err)
		if err != nil {
			l.logger.Error("Message processing failed", "queue", name, "dispatchID", id, "error", err)
			return
		}
		l.logger.Debug("Message processed", "queue", name, "dispatchID", id, "duration", time.Since(start))
	}()

	p := l.newProcessor()
	if p == nil {
		return apperrors.Newf(apperrors.ErrProcessingFailed, "processor factory returned nil for %s", name)
	}
	if err := p.ProcessMessage(ctx, name, msg); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrProcessingFailed, "process message from %s", name)
	}
	return nil
}
