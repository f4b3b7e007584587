// Package store builds the single Redis client shared by every queue, the
// listener and the lock manager, and owns the key layout they write to.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

const defaultPingTimeout = 5 * time.Second

// Options maps the store section of the configuration onto go-redis options.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:            cfg.Addr(),
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.ConnectTimeout,
		ReadTimeout:     cfg.SyncTimeout,
		WriteTimeout:    cfg.SyncTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
	}
}

// NewClient creates the shared client and verifies the store is reachable.
// The caller owns the returned client and is responsible for closing it.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logger.Logger) (*redis.Client, error) {
	log = logger.OrDiscard(log)

	client := redis.NewClient(Options(cfg))
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		log.Error("Failed to connect to Redis", "addr", cfg.Addr(), "error", err)
		return nil, err
	}

	log.Info("Redis client created",
		"addr", cfg.Addr(),
		"db", cfg.Database,
		"queuePrefix", cfg.QueuePrefix,
		"maxRetries", cfg.MaxRetries)
	return client, nil
}

// Ping checks store reachability, bounded by a default timeout when ctx has
// no deadline of its own.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.StoreFailure("store.ping", err)
	}
	return nil
}
