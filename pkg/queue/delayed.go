package queue

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// DelayedQueue stores messages in a sorted set scored by the Unix second at
// which they become eligible. Receive claims the earliest eligible member.
//
// Members are unique: sending a payload that is already pending only moves
// its score.
type DelayedQueue struct {
	base
	now func() time.Time
}

// NewDelayedQueue creates a delayed queue over client.
func NewDelayedQueue(client redis.UniversalClient, prefix string, opts ...Option) *DelayedQueue {
	o := newOptions(opts)
	return &DelayedQueue{base: newBase(client, prefix, o), now: o.now}
}

// Type returns DelayedQueueType.
func (q *DelayedQueue) Type() QueueType { return DelayedQueueType }

// Send schedules message for immediate eligibility.
func (q *DelayedQueue) Send(ctx context.Context, name QueueName, message string) error {
	return q.SendAt(ctx, name, message, q.now())
}

// SendAfter schedules message to become eligible after delay.
func (q *DelayedQueue) SendAfter(ctx context.Context, name QueueName, message string, delay time.Duration) error {
	if delay < 0 {
		return apperrors.InvalidArgument("delay must not be negative, got %s", delay)
	}
	return q.SendAt(ctx, name, message, q.now().Add(delay))
}

// SendAt schedules message to become eligible at the second containing at.
func (q *DelayedQueue) SendAt(ctx context.Context, name QueueName, message string, at time.Time) (err error) {
	if err := validateSend(name, message); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "delayed.send", DelayedQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordSend(ctx, DelayedQueueType, name, err, time.Since(start))
		endSpan(span, err)
	}()

	z := redis.Z{Score: float64(at.Unix()), Member: message}
	if err = q.client.ZAdd(ctx, q.Key(name), z).Err(); err != nil {
		q.logger.Error("Failed to schedule message", "queue", name, "error", err)
		return apperrors.StoreFailure("delayed.send", err)
	}
	q.logger.Debug("Message scheduled", "queue", name, "eligibleAt", at.Unix())
	return nil
}

// Receive removes and returns the eligible member with the lowest score.
// When a concurrent consumer removes the member first, Receive reports
// nothing rather than returning it twice.
func (q *DelayedQueue) Receive(ctx context.Context, name QueueName) (msg string, ok bool, err error) {
	if err := validateName(name); err != nil {
		return "", false, err
	}

	ctx, span := startSpan(ctx, "delayed.receive", DelayedQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordReceive(ctx, DelayedQueueType, name, ok, err, time.Since(start))
		endSpan(span, err)
	}()

	key := q.Key(name)
	members, err := q.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    strconv.FormatInt(q.now().Unix(), 10),
		Offset: 0,
		Count:  1,
	}).Result()
	if err != nil {
		q.logger.Error("Failed to read delayed messages", "queue", name, "error", err)
		return "", false, apperrors.StoreFailure("delayed.receive", err)
	}
	if len(members) == 0 {
		return "", false, nil
	}

	removed, err := q.client.ZRem(ctx, key, members[0]).Result()
	if err != nil {
		q.logger.Error("Failed to claim delayed message", "queue", name, "error", err)
		return "", false, apperrors.StoreFailure("delayed.receive", err)
	}
	if removed == 0 {
		q.logger.Debug("Delayed message claimed by another consumer", "queue", name)
		return "", false, nil
	}
	return members[0], true, nil
}

// Pending returns the number of scheduled messages, eligible or not.
func (q *DelayedQueue) Pending(ctx context.Context, name QueueName) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	n, err := q.client.ZCard(ctx, q.Key(name)).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("delayed.pending", err)
	}
	return n, nil
}
