package queue

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/pkg/store"
)

const defaultPubSubWaitTimeout = time.Second

// Option configures a queue.
type Option func(*options)

type options struct {
	logger      logger.Logger
	metrics     *MetricsCollector
	now         func() time.Time
	waitTimeout time.Duration
}

// WithLogger sets the logger used by the queue.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.logger = logger.OrDiscard(l) }
}

// WithMetrics shares a metrics collector between queues.
func WithMetrics(mc *MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithClock overrides the time source used to score delayed messages.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithPubSubWaitTimeout bounds how long a broadcast receive waits.
func WithPubSubWaitTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitTimeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:      logger.Discard,
		now:         time.Now,
		waitTimeout: defaultPubSubWaitTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = NewMetricsCollector()
	}
	return o
}

// base carries what every strategy shares: the store client, which is never
// closed here, and the key layout.
type base struct {
	client  redis.UniversalClient
	keys    store.Keys
	logger  logger.Logger
	metrics *MetricsCollector
}

func newBase(client redis.UniversalClient, prefix string, o options) base {
	return base{
		client:  client,
		keys:    store.NewKeys(prefix),
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Key returns the store key holding the named queue.
func (b *base) Key(name QueueName) string {
	return b.keys.Queue(name.String())
}
