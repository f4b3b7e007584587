package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	ping      func(ctx context.Context) error
	startTime time.Time
}

// NewHealthHandler creates a new health handler. ping checks the store.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping, startTime: time.Now()}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    int64  `json:"uptime_seconds"`
	Store     string `json:"store"`
	Error     string `json:"error,omitempty"`
}

// Handle handles GET /health.
func (h *HealthHandler) Handle(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    int64(time.Since(h.startTime).Seconds()),
		Store:     "up",
	}
	status := http.StatusOK
	if err := h.ping(c.Request.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Store = "down"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
