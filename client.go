package redisqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/lock"
	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/pkg/queue"
	"github.com/kart-io/redisqueue/pkg/store"
)

// Client wires one shared store client into the queue factory, the FIFO
// sender and the lock manager.
type Client struct {
	config    *config.Config
	logger    logger.Logger
	redis     redis.UniversalClient
	ownsRedis bool
	factory   *queue.Factory
	sender    *queue.Sender
	locks     *lock.Manager

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	config     *config.Config
	configOpts []config.Option
	logger     logger.Logger
	redis      redis.UniversalClient
}

// WithConfig uses cfg instead of the defaults.
func WithConfig(cfg *config.Config) Option {
	return func(o *clientOptions) { o.config = cfg }
}

// WithConfigOptions applies configuration options on top of the base config.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *clientOptions) { o.configOpts = append(o.configOpts, opts...) }
}

// WithLogger configures a custom logger
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithRedisClient uses an existing store client. The Client never closes a
// client it did not create.
func WithRedisClient(rc redis.UniversalClient) Option {
	return func(o *clientOptions) { o.redis = rc }
}

// New creates a Client. Unless WithRedisClient is given, a store client is
// created from the configuration and must be reachable.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}

	cfg := config.Default()
	if o.config != nil {
		copied := *o.config
		cfg = &copied
	}
	if err := cfg.Apply(o.configOpts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.OrDiscard(o.logger)

	c := &Client{config: cfg, logger: log, redis: o.redis}
	if c.redis == nil {
		rc, err := store.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		c.redis = rc
		c.ownsRedis = true
	}

	c.factory = queue.NewFactory(c.redis, cfg.Redis.QueuePrefix,
		queue.WithLogger(log),
		queue.WithPubSubWaitTimeout(cfg.Queue.PubSubWaitTimeout))
	c.sender = queue.NewSender(c.factory.List(), log)
	c.locks = lock.NewManager(c.redis, cfg.Redis.QueuePrefix, log)

	log.Info("Client created", "queuePrefix", cfg.Redis.QueuePrefix, "ownsStore", c.ownsRedis)
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() *Config { return c.config }

// Logger returns the client logger.
func (c *Client) Logger() Logger { return c.logger }

// Redis returns the shared store client.
func (c *Client) Redis() redis.UniversalClient { return c.redis }

// Factory returns the queue factory.
func (c *Client) Factory() *Factory { return c.factory }

// Queue returns the strategy for t.
func (c *Client) Queue(t QueueType) (Queue, error) { return c.factory.GetQueue(t) }

// Sender returns the FIFO producer.
func (c *Client) Sender() *Sender { return c.sender }

// Locks returns the lock manager.
func (c *Client) Locks() *LockManager { return c.locks }

// Listener creates a listener draining the FIFO queues into processors made
// by newProcessor. The poll interval comes from the configuration unless
// overridden by opts.
func (c *Client) Listener(newProcessor ProcessorFactory, opts ...ListenerOption) *Listener {
	base := []ListenerOption{
		queue.WithPollInterval(c.config.Queue.PollInterval),
		queue.WithListenerLogger(c.logger),
	}
	return queue.NewListener(c.factory.List(), newProcessor, append(base, opts...)...)
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return store.Ping(ctx, c.redis)
}

// Close releases the store client if this Client created it. It is safe to
// call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if c.ownsRedis {
			if err := c.redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
				c.closeErr = err
			}
		}
		c.logger.Info("Client closed")
	})
	return c.closeErr
}
