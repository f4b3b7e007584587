package queue

import (
	"github.com/redis/go-redis/v9"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

// Factory builds one instance of every strategy up front and hands the same
// instance out for the lifetime of the process.
type Factory struct {
	list    *ListQueue
	delayed *DelayedQueue
	pubsub  *PubSubQueue
	stream  *StreamQueue
	queues  map[QueueType]Queue
	metrics *MetricsCollector
	logger  logger.Logger
}

// NewFactory creates the four strategies over the shared client. Options are
// applied to every strategy; when no collector is given they share a new one.
func NewFactory(client redis.UniversalClient, prefix string, opts ...Option) *Factory {
	o := newOptions(opts)
	shared := append(opts[:len(opts):len(opts)], WithMetrics(o.metrics))

	f := &Factory{
		list:    NewListQueue(client, prefix, shared...),
		delayed: NewDelayedQueue(client, prefix, shared...),
		pubsub:  NewPubSubQueue(client, prefix, shared...),
		stream:  NewStreamQueue(client, prefix, shared...),
		metrics: o.metrics,
		logger:  o.logger,
	}
	f.queues = map[QueueType]Queue{
		ListQueueType:    f.list,
		DelayedQueueType: f.delayed,
		PubSubQueueType:  f.pubsub,
		StreamQueueType:  f.stream,
	}

	f.logger.Info("Queue factory created", "prefix", prefix, "types", len(f.queues))
	return f
}

// GetQueue returns the strategy for t. Values outside the closed set fail.
func (f *Factory) GetQueue(t QueueType) (Queue, error) {
	q, ok := f.queues[t]
	if !ok {
		f.logger.Warn("Unsupported queue type requested", "type", t)
		return nil, apperrors.InvalidArgument("unsupported queue type: %s", t)
	}
	return q, nil
}

// Types returns the supported queue types.
func (f *Factory) Types() []QueueType {
	return AllQueueTypes()
}

// List returns the FIFO strategy.
func (f *Factory) List() *ListQueue { return f.list }

// Delayed returns the delayed strategy.
func (f *Factory) Delayed() *DelayedQueue { return f.delayed }

// PubSub returns the broadcast strategy.
func (f *Factory) PubSub() *PubSubQueue { return f.pubsub }

// Stream returns the log strategy.
func (f *Factory) Stream() *StreamQueue { return f.stream }

// Metrics returns the collector shared by the strategies.
func (f *Factory) Metrics() *MetricsCollector { return f.metrics }
