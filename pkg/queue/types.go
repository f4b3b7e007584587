// Package queue provides Redis-backed message queues behind one interface.
//
// Four strategies share the Queue interface and the same store client:
//
//   - ListQueue: FIFO on a list (RPUSH / LPOP).
//   - DelayedQueue: a sorted set scored by eligibility time; receive returns
//     the earliest eligible member and removes it.
//   - PubSubQueue: fire-and-forget broadcast on an unprefixed channel.
//   - StreamQueue: append-only log; receive reads the first entry without
//     removing it.
//
// The Factory hands out one instance per strategy, the Sender is the FIFO
// producer, and the Listener drains the FIFO queues into Processors.
package queue

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
)

// QueueName identifies one of the logical queues. The set is closed.
type QueueName int

const (
	Queue1 QueueName = iota + 1
	Queue2
	Queue3
)

var queueNames = map[QueueName]string{
	Queue1: "Queue1",
	Queue2: "Queue2",
	Queue3: "Queue3",
}

// AllQueueNames returns every queue name in declaration order.
func AllQueueNames() []QueueName {
	return []QueueName{Queue1, Queue2, Queue3}
}

// String returns the symbolic name used in store keys.
func (n QueueName) String() string {
	if s, ok := queueNames[n]; ok {
		return s
	}
	return fmt.Sprintf("QueueName(%d)", int(n))
}

// Valid reports whether n is a member of the closed set.
func (n QueueName) Valid() bool {
	_, ok := queueNames[n]
	return ok
}

// ParseQueueName parses a symbolic queue name, ignoring case.
func ParseQueueName(s string) (QueueName, error) {
	for n, name := range queueNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return n, nil
		}
	}
	return 0, apperrors.InvalidArgument("unknown queue name %q", s)
}

// QueueType selects a queueing strategy. The set is closed.
type QueueType int

const (
	ListQueueType QueueType = iota + 1
	DelayedQueueType
	PubSubQueueType
	StreamQueueType
)

var queueTypes = map[QueueType]string{
	ListQueueType:    "ListQueue",
	DelayedQueueType: "DelayedQueue",
	PubSubQueueType:  "PubSubQueue",
	StreamQueueType:  "StreamQueue",
}

var queueTypeAliases = map[string]QueueType{
	"fifo":      ListQueueType,
	"list":      ListQueueType,
	"delayed":   DelayedQueueType,
	"broadcast": PubSubQueueType,
	"pubsub":    PubSubQueueType,
	"log":       StreamQueueType,
	"stream":    StreamQueueType,
}

// AllQueueTypes returns every queue type in declaration order.
func AllQueueTypes() []QueueType {
	return []QueueType{ListQueueType, DelayedQueueType, PubSubQueueType, StreamQueueType}
}

func (t QueueType) String() string {
	if s, ok := queueTypes[t]; ok {
		return s
	}
	return fmt.Sprintf("QueueType(%d)", int(t))
}

// Valid reports whether t is a member of the closed set.
func (t QueueType) Valid() bool {
	_, ok := queueTypes[t]
	return ok
}

// ParseQueueType parses a symbolic type name or one of its short aliases
// (fifo, delayed, broadcast, log), ignoring case.
func ParseQueueType(s string) (QueueType, error) {
	s = strings.TrimSpace(s)
	for t, name := range queueTypes {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	if t, ok := queueTypeAliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return 0, apperrors.InvalidArgument("unknown queue type %q", s)
}

// Queue is the contract shared by every strategy.
//
// Receive returns ok=false when nothing is available; that is not an error.
// Store failures are returned as STORE_FAILURE errors wrapping the client
// error and are never retried here.
type Queue interface {
	// Type reports the strategy implemented.
	Type() QueueType
	// Send places message on the named queue.
	Send(ctx context.Context, name QueueName, message string) error
	// Receive takes at most one message from the named queue.
	Receive(ctx context.Context, name QueueName) (message string, ok bool, err error)
}

func validateName(name QueueName) error {
	if !name.Valid() {
		return apperrors.InvalidArgument("unknown queue name %d", int(name))
	}
	return nil
}

func validateSend(name QueueName, message string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if strings.TrimSpace(message) == "" {
		return apperrors.InvalidArgument("message must not be blank")
	}
	return nil
}
