package queue

import (
	"context"

	"github.com/kart-io/redisqueue/pkg/logger"
)

// Processor handles one message taken off a queue by the Listener.
type Processor interface {
	ProcessMessage(ctx context.Context, name QueueName, message string) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, name QueueName, message string) error

// ProcessMessage calls f.
func (f ProcessorFunc) ProcessMessage(ctx context.Context, name QueueName, message string) error {
	return f(ctx, name, message)
}

// ProcessorFactory returns a fresh Processor for each dispatch.
type ProcessorFactory func() Processor

// LogProcessor logs every message it is given.
type LogProcessor struct {
	logger logger.Logger
}

// NewLogProcessor creates a LogProcessor.
func NewLogProcessor(log logger.Logger) *LogProcessor {
	return &LogProcessor{logger: logger.OrDiscard(log)}
}

// ProcessMessage logs the message.
func (p *LogProcessor) ProcessMessage(ctx context.Context, name QueueName, message string) error {
	p.logger.Info("Processing message from queue",
		"queue", name,
		"dispatchID", DispatchID(ctx),
		"message", message)
	return nil
}

// LogProcessorFactory returns a factory producing LogProcessors.
func LogProcessorFactory(log logger.Logger) ProcessorFactory {
	return func() Processor { return NewLogProcessor(log) }
}

type dispatchIDKey struct{}

// DispatchID returns the id of the dispatch scope ctx belongs to, or "".
func DispatchID(ctx context.Context) string {
	id, _ := ctx.Value(dispatchIDKey{}).(string)
	return id
}

func withDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey{}, id)
}
