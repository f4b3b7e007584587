// Functional options for redisqueue configuration
package config

import (
	"time"

	"github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

// WithRedisAddr sets the store host and port
func WithRedisAddr(host string, port int) Option {
	return func(c *Config) error {
		c.Redis.Host = host
		c.Redis.Port = port
		return nil
	}
}

// WithPassword sets the store password
func WithPassword(password string) Option {
	return func(c *Config) error {
		c.Redis.Password = password
		return nil
	}
}

// WithDatabase selects the logical store database
func WithDatabase(db int) Option {
	return func(c *Config) error {
		c.Redis.Database = db
		return nil
	}
}

// WithQueuePrefix sets the prefix applied to every queue and lock key
func WithQueuePrefix(prefix string) Option {
	return func(c *Config) error {
		c.Redis.QueuePrefix = prefix
		return nil
	}
}

// WithMaxRetries sets how often the store client retries a failed command
func WithMaxRetries(retries int) Option {
	return func(c *Config) error {
		c.Redis.MaxRetries = retries
		return nil
	}
}

// WithPollInterval sets the pause between listener cycles
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return errors.Newf(errors.ErrInvalidConfig, "poll interval must be positive, got %s", d)
		}
		c.Queue.PollInterval = d
		return nil
	}
}

// WithPubSubWaitTimeout bounds how long a broadcast receive waits
func WithPubSubWaitTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return errors.Newf(errors.ErrInvalidConfig, "pubsub wait timeout must be positive, got %s", d)
		}
		c.Queue.PubSubWaitTimeout = d
		return nil
	}
}

// WithDefaultLockTTL sets the TTL used when callers do not pass one
func WithDefaultLockTTL(d time.Duration) Option {
	return func(c *Config) error {
		c.Lock.DefaultTTL = d
		return nil
	}
}

// WithLog sets the zap logging configuration
func WithLog(cfg logger.ZapConfig) Option {
	return func(c *Config) error {
		c.Log = cfg
		return nil
	}
}

// WithTelemetry sets the telemetry configuration
func WithTelemetry(cfg TelemetryConfig) Option {
	return func(c *Config) error {
		c.Telemetry = cfg
		return nil
	}
}

// WithHTTPAddr sets the API listen address
func WithHTTPAddr(addr string) Option {
	return func(c *Config) error {
		c.HTTP.Addr = addr
		return nil
	}
}

// WithTestDefaults applies test-friendly defaults
func WithTestDefaults() Option {
	return func(c *Config) error {
		c.Redis.MaxRetries = -1
		c.Redis.ConnectTimeout = time.Second
		c.Redis.SyncTimeout = time.Second
		c.Queue.PollInterval = 10 * time.Millisecond
		c.Queue.PubSubWaitTimeout = 200 * time.Millisecond
		c.Log.Level = "debug"
		c.Telemetry.Enabled = false
		c.HTTP.Mode = "test"
		return nil
	}
}
