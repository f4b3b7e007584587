package queue

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kart-io/redisqueue/pkg/queue"

var tracer = otel.Tracer(instrumentationName)

func startSpan(ctx context.Context, op string, t QueueType, name QueueName) (context.Context, trace.Span) {
	return tracer.Start(ctx, "redisqueue."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("queue.type", t.String()),
			attribute.String("queue.name", name.String()),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
