package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/redisqueue/pkg/lock"
	"github.com/kart-io/redisqueue/pkg/logger"
)

// LockManager is the subset of the lock manager the API uses.
type LockManager interface {
	Acquire(ctx context.Context, c lock.Category, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, c lock.Category, key string) (bool, error)
	Extend(ctx context.Context, c lock.Category, key string, additional time.Duration) (bool, error)
	IsLocked(ctx context.Context, c lock.Category, key string) (bool, error)
}

// LockHandler exposes the lock manager over HTTP.
type LockHandler struct {
	locks      LockManager
	defaultTTL time.Duration
	logger     logger.Logger
}

// NewLockHandler creates a new lock handler. defaultTTL is used for acquire
// and extend when the request carries no ?ttl=.
func NewLockHandler(locks LockManager, defaultTTL time.Duration, log logger.Logger) *LockHandler {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &LockHandler{locks: locks, defaultTTL: defaultTTL, logger: logger.OrDiscard(log)}
}

// LockStatusResponse reports whether a lock is held.
type LockStatusResponse struct {
	Category string `json:"category"`
	LockID   string `json:"lockID"`
	IsLocked bool   `json:"isLocked"`
}

func (h *LockHandler) params(c *gin.Context) (lock.Category, string, bool) {
	category, err := lock.ParseCategory(c.Param("category"))
	if err != nil {
		failErr(c, err)
		return 0, "", false
	}
	return category, c.Param("lockID"), true
}

func (h *LockHandler) ttl(c *gin.Context) (time.Duration, bool) {
	raw := c.Query("ttl")
	if raw == "" {
		return h.defaultTTL, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		fail(c, http.StatusBadRequest, fmt.Sprintf("invalid ttl %q", raw))
		return 0, false
	}
	return d, true
}

// Acquire handles POST /acquire-lock/:category/:lockID.
func (h *LockHandler) Acquire(c *gin.Context) {
	category, id, valid := h.params(c)
	if !valid {
		return
	}
	ttl, valid := h.ttl(c)
	if !valid {
		return
	}

	acquired, err := h.locks.Acquire(c.Request.Context(), category, id, ttl)
	if err != nil {
		failErr(c, err)
		return
	}
	if !acquired {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Failed to acquire lock for category: %s", category))
		return
	}
	h.logger.Info("Lock acquired", "category", category, "lockID", id, "ttl", ttl)
	ok(c, fmt.Sprintf("Lock acquired successfully for category: %s", category))
}

// Release handles POST /release-lock/:category/:lockID.
func (h *LockHandler) Release(c *gin.Context) {
	category, id, valid := h.params(c)
	if !valid {
		return
	}

	released, err := h.locks.Release(c.Request.Context(), category, id)
	if err != nil {
		failErr(c, err)
		return
	}
	if !released {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Failed to release lock for category: %s", category))
		return
	}
	h.logger.Info("Lock released", "category", category, "lockID", id)
	ok(c, fmt.Sprintf("Lock released successfully for category: %s", category))
}

// Extend handles POST /extend-lock/:category/:lockID.
func (h *LockHandler) Extend(c *gin.Context) {
	category, id, valid := h.params(c)
	if !valid {
		return
	}
	additional, valid := h.ttl(c)
	if !valid {
		return
	}

	extended, err := h.locks.Extend(c.Request.Context(), category, id, additional)
	if err != nil {
		failErr(c, err)
		return
	}
	if !extended {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Failed to extend lock for category: %s", category))
		return
	}
	ok(c, fmt.Sprintf("Lock extended successfully for category: %s", category))
}

// IsLocked handles GET /is-locked/:category/:lockID.
func (h *LockHandler) IsLocked(c *gin.Context) {
	category, id, valid := h.params(c)
	if !valid {
		return
	}

	locked, err := h.locks.IsLocked(c.Request.Context(), category, id)
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, LockStatusResponse{Category: category.String(), LockID: id, IsLocked: locked})
}
