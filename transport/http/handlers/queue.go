package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/pkg/queue"
)

const maxMessageBytes = 1 << 20

// QueueProvider resolves a queue strategy by type.
type QueueProvider interface {
	GetQueue(t queue.QueueType) (queue.Queue, error)
}

// delayedSender is implemented by strategies that accept a delay.
type delayedSender interface {
	SendAfter(ctx context.Context, name queue.QueueName, message string, delay time.Duration) error
}

// QueueHandler exposes send and receive over HTTP.
type QueueHandler struct {
	queues QueueProvider
	logger logger.Logger
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(queues QueueProvider, log logger.Logger) *QueueHandler {
	return &QueueHandler{queues: queues, logger: logger.OrDiscard(log)}
}

// ReceiveResponse reports the outcome of a receive.
type ReceiveResponse struct {
	Queue     string `json:"queue"`
	QueueName string `json:"queueName"`
	Found     bool   `json:"found"`
	Message   string `json:"message,omitempty"`
}

func (h *QueueHandler) resolve(c *gin.Context) (queue.Queue, queue.QueueName, bool) {
	t, err := queue.ParseQueueType(c.Param("queue"))
	if err != nil {
		failErr(c, err)
		return nil, 0, false
	}
	name, err := queue.ParseQueueName(c.Param("queueName"))
	if err != nil {
		failErr(c, err)
		return nil, 0, false
	}
	q, err := h.queues.GetQueue(t)
	if err != nil {
		failErr(c, err)
		return nil, 0, false
	}
	return q, name, true
}

// SendMessage handles POST /send-message/:queue/:queueName. The body is the
// message, either raw text or a JSON string. An optional ?delay= duration is
// honoured by strategies that support scheduling.
func (h *QueueHandler) SendMessage(c *gin.Context) {
	q, name, resolved := h.resolve(c)
	if !resolved {
		return
	}

	text, err := readMessage(c.Request.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		fail(c, http.StatusBadRequest, "Message content cannot be empty.")
		return
	}

	ctx := c.Request.Context()
	if raw := c.Query("delay"); raw != "" {
		delay, perr := time.ParseDuration(raw)
		if perr != nil {
			fail(c, http.StatusBadRequest, fmt.Sprintf("invalid delay %q: %v", raw, perr))
			return
		}
		ds, supported := q.(delayedSender)
		if !supported {
			fail(c, http.StatusBadRequest, fmt.Sprintf("queue type %s does not support delays", q.Type()))
			return
		}
		err = ds.SendAfter(ctx, name, text, delay)
	} else {
		err = q.Send(ctx, name, text)
	}
	if err != nil {
		h.logger.Error("Failed to send message", "queue", q.Type(), "queueName", name, "error", err)
		failErr(c, err)
		return
	}
	ok(c, fmt.Sprintf("Message sent successfully to queue: %s", q.Type()))
}

// ReceiveMessage handles GET /receive-message/:queue/:queueName.
func (h *QueueHandler) ReceiveMessage(c *gin.Context) {
	q, name, resolved := h.resolve(c)
	if !resolved {
		return
	}

	msg, found, err := q.Receive(c.Request.Context(), name)
	if err != nil {
		h.logger.Error("Failed to receive message", "queue", q.Type(), "queueName", name, "error", err)
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ReceiveResponse{
		Queue:     q.Type().String(),
		QueueName: name.String(),
		Found:     found,
		Message:   msg,
	})
}

func readMessage(body io.Reader) (string, error) {
	if body == nil {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxMessageBytes+1))
	if err != nil {
		return "", apperrors.InvalidArgument("failed to read body: %v", err)
	}
	if len(raw) > maxMessageBytes {
		return "", apperrors.InvalidArgument("message exceeds %d bytes", maxMessageBytes)
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	return string(raw), nil
}
