package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// PubSubQueue broadcasts on a channel named after the queue, without the key
// prefix. Nothing is stored: a message published while nobody is subscribed
// is lost.
type PubSubQueue struct {
	base
	waitTimeout time.Duration
}

// NewPubSubQueue creates a broadcast queue over client.
func NewPubSubQueue(client redis.UniversalClient, prefix string, opts ...Option) *PubSubQueue {
	o := newOptions(opts)
	return &PubSubQueue{base: newBase(client, prefix, o), waitTimeout: o.waitTimeout}
}

// Type returns PubSubQueueType.
func (q *PubSubQueue) Type() QueueType { return PubSubQueueType }

// Channel returns the channel the named queue broadcasts on.
func (q *PubSubQueue) Channel(name QueueName) string {
	return q.keys.Channel(name.String())
}

// Send publishes message to every current subscriber of the channel.
func (q *PubSubQueue) Send(ctx context.Context, name QueueName, message string) (err error) {
	if err := validateSend(name, message); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "pubsub.send", PubSubQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordSend(ctx, PubSubQueueType, name, err, time.Since(start))
		endSpan(span, err)
	}()

	receivers, err := q.client.Publish(ctx, q.Channel(name), message).Result()
	if err != nil {
		q.logger.Error("Failed to publish message", "queue", name, "error", err)
		return apperrors.StoreFailure("pubsub.send", err)
	}
	q.logger.Debug("Message published", "queue", name, "receivers", receivers)
	return nil
}

// Receive subscribes to the channel and waits for one message, up to the
// configured wait timeout. The subscription is closed before returning.
func (q *PubSubQueue) Receive(ctx context.Context, name QueueName) (msg string, ok bool, err error) {
	if err := validateName(name); err != nil {
		return "", false, err
	}

	ctx, span := startSpan(ctx, "pubsub.receive", PubSubQueueType, name)
	start := time.Now()
	defer func() {
		q.metrics.RecordReceive(ctx, PubSubQueueType, name, ok, err, time.Since(start))
		endSpan(span, err)
	}()

	sub := q.client.Subscribe(ctx, q.Channel(name))
	defer func() {
		if cerr := sub.Close(); cerr != nil {
			q.logger.Warn("Failed to close subscription", "queue", name, "error", cerr)
		}
	}()

	// Wait for the subscription to be confirmed so that nothing published
	// after this point is missed.
	if _, err = sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return "", false, apperrors.Canceled("pubsub.receive", ctx.Err())
		}
		q.logger.Error("Failed to subscribe", "queue", name, "error", err)
		return "", false, apperrors.StoreFailure("pubsub.receive", err)
	}

	timer := time.NewTimer(q.waitTimeout)
	defer timer.Stop()

	select {
	case m, open := <-sub.Channel():
		if !open {
			return "", false, nil
		}
		return m.Payload, true, nil
	case <-timer.C:
		return "", false, nil
	case <-ctx.Done():
		return "", false, apperrors.Canceled("pubsub.receive", ctx.Err())
	}
}

// Subscribers returns the number of clients subscribed to the named channel.
func (q *PubSubQueue) Subscribers(ctx context.Context, name QueueName) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	counts, err := q.client.PubSubNumSub(ctx, q.Channel(name)).Result()
	if err != nil {
		return 0, apperrors.StoreFailure("pubsub.subscribers", err)
	}
	return counts[q.Channel(name)], nil
}
