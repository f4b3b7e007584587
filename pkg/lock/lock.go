// Package lock provides TTL-based mutual exclusion on the shared store.
//
// A lock is a key holding the sentinel value "LOCKED" with an expiry. The
// lock carries no owner token: any caller may release or extend any lock, so
// callers must only release locks they acquired.
package lock

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/pkg/store"
)

// Sentinel is the value stored under every held lock.
const Sentinel = "LOCKED"

const instrumentationName = "github.com/kart-io/redisqueue/pkg/lock"

// Manager acquires, releases, extends and inspects locks.
type Manager struct {
	client redis.UniversalClient
	keys   store.Keys
	logger logger.Logger
	tracer trace.Tracer
	ops    metric.Int64Counter
}

// NewManager creates a lock manager over the shared client. Lock keys are
// prefix+"lock:"+category+":"+key.
func NewManager(client redis.UniversalClient, prefix string, log logger.Logger) *Manager {
	ops, err := otel.Meter(instrumentationName).Int64Counter("redisqueue_lock_operations_total",
		metric.WithDescription("Total number of lock operations by outcome"))
	if err != nil {
		otel.Handle(err)
		ops = noop.Int64Counter{}
	}
	return &Manager{
		client: client,
		keys:   store.NewKeys(prefix),
		logger: logger.OrDiscard(log),
		tracer: otel.Tracer(instrumentationName),
		ops:    ops,
	}
}

// Key returns the store key for (category, key).
func (m *Manager) Key(c Category, key string) string {
	return m.keys.Lock(c.String(), key)
}

func validate(c Category, key string) error {
	if !c.Valid() {
		return apperrors.InvalidArgument("unknown lock category %d", int(c))
	}
	if strings.TrimSpace(key) == "" {
		return apperrors.InvalidArgument("lock key must not be blank")
	}
	return nil
}

func (m *Manager) start(ctx context.Context, op string, c Category, key string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "redisqueue.lock."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("lock.category", c.String()),
			attribute.String("lock.key", key),
		),
	)
}

func (m *Manager) finish(ctx context.Context, span trace.Span, op string, result bool, err error) {
	outcome := "false"
	switch {
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case result:
		outcome = "true"
	}
	m.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lock.op", op),
		attribute.String("outcome", outcome),
	))
	span.End()
}

// Acquire sets the lock if nobody holds it. It returns true when this call
// created the lock, which then expires after ttl unless released or extended.
func (m *Manager) Acquire(ctx context.Context, c Category, key string, ttl time.Duration) (acquired bool, err error) {
	if err := validate(c, key); err != nil {
		return false, err
	}
	if ttl <= 0 {
		return false, apperrors.InvalidArgument("lock ttl must be positive, got %s", ttl)
	}

	ctx, span := m.start(ctx, "acquire", c, key)
	defer func() { m.finish(ctx, span, "acquire", acquired, err) }()

	acquired, err = m.client.SetNX(ctx, m.Key(c, key), Sentinel, ttl).Result()
	if err != nil {
		m.logger.Error("Failed to acquire lock", "category", c, "key", key, "error", err)
		return false, apperrors.StoreFailure("lock.acquire", err)
	}
	m.logger.Debug("Lock acquire attempted", "category", c, "key", key, "ttl", ttl, "acquired", acquired)
	return acquired, nil
}

// Release deletes the lock. It returns true when a lock was removed and
// false when none was held; releasing twice is harmless.
func (m *Manager) Release(ctx context.Context, c Category, key string) (released bool, err error) {
	if err := validate(c, key); err != nil {
		return false, err
	}

	ctx, span := m.start(ctx, "release", c, key)
	defer func() { m.finish(ctx, span, "release", released, err) }()

	n, err := m.client.Del(ctx, m.Key(c, key)).Result()
	if err != nil {
		m.logger.Error("Failed to release lock", "category", c, "key", key, "error", err)
		return false, apperrors.StoreFailure("lock.release", err)
	}
	m.logger.Debug("Lock released", "category", c, "key", key, "removed", n)
	return n > 0, nil
}

// Extend adds additional to the lock's remaining lifetime. It returns false
// when the lock is absent or has no expiry.
//
// The read of the remaining TTL and the update are separate commands, so a
// lock expiring in between is reported as extended only if the update still
// finds the key.
func (m *Manager) Extend(ctx context.Context, c Category, key string, additional time.Duration) (extended bool, err error) {
	if err := validate(c, key); err != nil {
		return false, err
	}
	if additional <= 0 {
		return false, apperrors.InvalidArgument("lock extension must be positive, got %s", additional)
	}

	ctx, span := m.start(ctx, "extend", c, key)
	defer func() { m.finish(ctx, span, "extend", extended, err) }()

	k := m.Key(c, key)
	remaining, err := m.client.PTTL(ctx, k).Result()
	if err != nil {
		m.logger.Error("Failed to read lock ttl", "category", c, "key", key, "error", err)
		return false, apperrors.StoreFailure("lock.extend", err)
	}
	// -2: missing key, -1: no expiry.
	if remaining < 0 {
		return false, nil
	}

	extended, err = m.client.PExpire(ctx, k, remaining+additional).Result()
	if err != nil {
		m.logger.Error("Failed to extend lock", "category", c, "key", key, "error", err)
		return false, apperrors.StoreFailure("lock.extend", err)
	}
	m.logger.Debug("Lock extended", "category", c, "key", key, "ttl", remaining+additional, "extended", extended)
	return extended, nil
}

// IsLocked reports whether the lock key currently exists.
func (m *Manager) IsLocked(ctx context.Context, c Category, key string) (locked bool, err error) {
	if err := validate(c, key); err != nil {
		return false, err
	}

	ctx, span := m.start(ctx, "is_locked", c, key)
	defer func() { m.finish(ctx, span, "is_locked", locked, err) }()

	n, err := m.client.Exists(ctx, m.Key(c, key)).Result()
	if err != nil {
		m.logger.Error("Failed to check lock", "category", c, "key", key, "error", err)
		return false, apperrors.StoreFailure("lock.is_locked", err)
	}
	return n > 0, nil
}

// TTL returns the remaining lifetime of the lock, or zero when it is not held.
func (m *Manager) TTL(ctx context.Context, c Category, key string) (time.Duration, error) {
	if err := validate(c, key); err != nil {
		return 0, err
	}
	d, err := m.client.PTTL(ctx, m.Key(c, key)).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("lock.ttl", err)
	}
	if d < 0 {
		return 0, nil
	}
	return d, nil
}

// Do runs fn while holding the lock and releases it afterwards. It returns a
// LOCK_HELD error without running fn when the lock is taken.
func (m *Manager) Do(ctx context.Context, c Category, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	acquired, err := m.Acquire(ctx, c, key, ttl)
	if err != nil {
		return err
	}
	if !acquired {
		return apperrors.LockHeld(m.Key(c, key))
	}

	defer func() {
		if _, rerr := m.Release(context.WithoutCancel(ctx), c, key); rerr != nil {
			m.logger.Warn("Failed to release lock after critical section", "category", c, "key", key, "error", rerr)
		}
	}()
	return fn(ctx)
}
