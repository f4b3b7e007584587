package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// streamField is the entry field carrying the payload.
const streamField = "message"

// StreamQueue appends entries to a stream. Receive always reads the oldest
// entry and never removes it; trimming is up to the owner of the stream.
type StreamQueue struct {
	base
}

// NewStreamQueue creates a log queue over client.
func NewStreamQueue(client redis.UniversalClient, prefix string, opts ...Option) *StreamQueue {
	return &StreamQueue{base: newBase(client, prefix, newOptions(opts))}
}

// Type returns StreamQueueType.
func (q *StreamQueue) Type() QueueType { return StreamQueueType }

// Send appends message as a new entry with a store-assigned id.
func (q *StreamQueue) Send(ctx context.Context, name QueueName, message string) (err error) {
	if err := validateSend(name, message); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "stream.send", StreamQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordSend(ctx, StreamQueueType, name, err, time.Since(start))
		endSpan(span, err)
	}()

	id, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.Key(name),
		Values: map[string]any{streamField: message},
	}).Result()
	if err != nil {
		q.logger.Error("Failed to append entry", "queue", name, "error", err)
		return apperrors.StoreFailure("stream.send", err)
	}
	q.logger.Debug("Entry appended", "queue", name, "id", id)
	return nil
}

// Receive reads the first entry of the stream without blocking.
func (q *StreamQueue) Receive(ctx context.Context, name QueueName) (msg string, ok bool, err error) {
	if err := validateName(name); err != nil {
		return "", false, err
	}

	ctx, span := startSpan(ctx, "stream.receive", StreamQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordReceive(ctx, StreamQueueType, name, ok, err, time.Since(start))
		endSpan(span, err)
	}()

	streams, err := q.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{q.Key(name), "0-0"},
		Count:   1,
		Block:   -1, // a zero Block would wait forever
	}).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		q.logger.Error("Failed to read stream", "queue", name, "error", err)
		return "", false, apperrors.StoreFailure("stream.receive", err)
	}
	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return "", false, nil
	}

	entry := streams[0].Messages[0]
	value, found := entry.Values[streamField].(string)
	if !found {
		q.logger.Warn("Stream entry has no message field", "queue", name, "id", entry.ID)
		return "", false, nil
	}
	return value, true, nil
}

// Len returns the number of entries in the stream.
func (q *StreamQueue) Len(ctx context.Context, name QueueName) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	n, err := q.client.XLen(ctx, q.Key(name)).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("stream.len", err)
	}
	return n, nil
}

// Trim caps the stream at maxLen entries, dropping the oldest, and returns
// how many were removed.
func (q *StreamQueue) Trim(ctx context.Context, name QueueName, maxLen int64) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if maxLen < 0 {
		return 0, apperrors.InvalidArgument("maxLen must not be negative, got %d", maxLen)
	}
	n, err := q.client.XTrimMaxLen(ctx, q.Key(name), maxLen).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("stream.trim", err)
	}
	return n, nil
}
