package queue

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Stats is a point-in-time snapshot of a MetricsCollector.
type Stats struct {
	Sent             int64 `json:"sent"`
	Received         int64 `json:"received"`
	Empty            int64 `json:"empty"`
	Errors           int64 `json:"errors"`
	Dispatched       int64 `json:"dispatched"`
	DispatchFailures int64 `json:"dispatch_failures"`
}

// MetricsCollector records queue and listener activity both as OpenTelemetry
// instruments on the global meter provider and as local counters.
type MetricsCollector struct {
	sent             metric.Int64Counter
	received         metric.Int64Counter
	empty            metric.Int64Counter
	errors           metric.Int64Counter
	dispatched       metric.Int64Counter
	dispatchFailures metric.Int64Counter
	duration         metric.Float64Histogram

	stats struct {
		sent, received, empty, errors, dispatched, dispatchFailures atomic.Int64
	}
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	meter := otel.Meter(instrumentationName)
	return &MetricsCollector{
		sent:             int64Counter(meter, "redisqueue_messages_sent_total", "Total number of messages sent"),
		received:         int64Counter(meter, "redisqueue_messages_received_total", "Total number of messages received"),
		empty:            int64Counter(meter, "redisqueue_receive_empty_total", "Total number of receives that found nothing"),
		errors:           int64Counter(meter, "redisqueue_operation_errors_total", "Total number of failed queue operations"),
		dispatched:       int64Counter(meter, "redisqueue_listener_dispatched_total", "Total number of messages handed to processors"),
		dispatchFailures: int64Counter(meter, "redisqueue_listener_dispatch_failures_total", "Total number of failed processor dispatches"),
		duration:         float64Histogram(meter, "redisqueue_operation_duration_seconds", "Duration of queue operations"),
	}
}

func int64Counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return c
}

func float64Histogram(meter metric.Meter, name, desc string) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	if err != nil {
		otel.Handle(err)
		return noop.Float64Histogram{}
	}
	return h
}

func queueAttrs(t QueueType, name QueueName, op string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("queue.type", t.String()),
		attribute.String("queue.name", name.String()),
		attribute.String("queue.op", op),
	)
}

// RecordSend records a send attempt
func (mc *MetricsCollector) RecordSend(ctx context.Context, t QueueType, name QueueName, err error, d time.Duration) {
	attrs := queueAttrs(t, name, "send")
	mc.duration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		mc.errors.Add(ctx, 1, attrs)
		mc.stats.errors.Add(1)
		return
	}
	mc.sent.Add(ctx, 1, attrs)
	mc.stats.sent.Add(1)
}

// RecordReceive records a receive attempt
func (mc *MetricsCollector) RecordReceive(ctx context.Context, t QueueType, name QueueName, found bool, err error, d time.Duration) {
	attrs := queueAttrs(t, name, "receive")
	mc.duration.Record(ctx, d.Seconds(), attrs)
	switch {
	case err != nil:
		mc.errors.Add(ctx, 1, attrs)
		mc.stats.errors.Add(1)
	case found:
		mc.received.Add(ctx, 1, attrs)
		mc.stats.received.Add(1)
	default:
		mc.empty.Add(ctx, 1, attrs)
		mc.stats.empty.Add(1)
	}
}

// RecordDispatch records one listener hand-off to a processor
func (mc *MetricsCollector) RecordDispatch(ctx context.Context, name QueueName, err error, d time.Duration) {
	attrs := queueAttrs(ListQueueType, name, "dispatch")
	mc.duration.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		mc.dispatchFailures.Add(ctx, 1, attrs)
		mc.stats.dispatchFailures.Add(1)
		return
	}
	mc.dispatched.Add(ctx, 1, attrs)
	mc.stats.dispatched.Add(1)
}

// Snapshot returns the local counters.
func (mc *MetricsCollector) Snapshot() Stats {
	return Stats{
		Sent:             mc.stats.sent.Load(),
		Received:         mc.stats.received.Load(),
		Empty:            mc.stats.empty.Load(),
		Errors:           mc.stats.errors.Load(),
		Dispatched:       mc.stats.dispatched.Load(),
		DispatchFailures: mc.stats.dispatchFailures.Load(),
	}
}
