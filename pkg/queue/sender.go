package queue

import (
	"context"
	"strings"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

// Sender is the producer for the FIFO queues drained by the Listener.
type Sender struct {
	list   *ListQueue
	logger logger.Logger
}

// NewSender creates a sender that appends through list.
func NewSender(list *ListQueue, log logger.Logger) *Sender {
	return &Sender{list: list, logger: logger.OrDiscard(log)}
}

// SendToQueue appends message to the tail of the named FIFO queue.
func (s *Sender) SendToQueue(ctx context.Context, name QueueName, message string) error {
	if strings.TrimSpace(message) == "" {
		s.logger.Warn("Rejected blank message", "queue", name)
		return apperrors.InvalidArgument("message must not be blank")
	}
	if err := s.list.Send(ctx, name, message); err != nil {
		return err
	}
	s.logger.Info("Message sent", "queue", name)
	return nil
}
