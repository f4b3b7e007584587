package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// ListQueue is the FIFO strategy: append at the tail, pop from the head.
type ListQueue struct {
	base
}

// NewListQueue creates a FIFO queue over client.
func NewListQueue(client redis.UniversalClient, prefix string, opts ...Option) *ListQueue {
	return &ListQueue{base: newBase(client, prefix, newOptions(opts))}
}

// Type returns ListQueueType.
func (q *ListQueue) Type() QueueType { return ListQueueType }

// Send appends message to the tail of the named list.
func (q *ListQueue) Send(ctx context.Context, name QueueName, message string) (err error) {
	if err := validateSend(name, message); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "list.send", ListQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordSend(ctx, ListQueueType, name, err, time.Since(start))
		endSpan(span, err)
	}()

	if err = q.client.RPush(ctx, q.Key(name), message).Err(); err != nil {
		q.logger.Error("Failed to push message", "queue", name, "error", err)
		return apperrors.StoreFailure("list.send", err)
	}
	q.logger.Debug("Message pushed", "queue", name)
	return nil
}

// Receive pops the head of the named list.
func (q *ListQueue) Receive(ctx context.Context, name QueueName) (msg string, ok bool, err error) {
	if err := validateName(name); err != nil {
		return "", false, err
	}

	ctx, span := startSpan(ctx, "list.receive", ListQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordReceive(ctx, ListQueueType, name, ok, err, time.Since(start))
		endSpan(span, err)
	}()

	msg, err = q.client.LPop(ctx, q.Key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		q.logger.Error("Failed to pop message", "queue", name, "error", err)
		return "", false, apperrors.StoreFailure("list.receive", err)
	}
	q.logger.Debug("Message popped", "queue", name)
	return msg, true, nil
}

// Len returns the number of messages waiting on the named list.
func (q *ListQueue) Len(ctx context.Context, name QueueName) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	n, err := q.client.LLen(ctx, q.Key(name)).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("list.len", err)
	}
	return n, nil
}
