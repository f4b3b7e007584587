// Package http exposes queues and locks over a small JSON API.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/transport/http/handlers"
	"github.com/kart-io/redisqueue/transport/http/middleware"
)

// Dependencies are the services the API serves.
type Dependencies struct {
	Queues handlers.QueueProvider
	Locks  handlers.LockManager
	// Ping checks store connectivity for /health.
	Ping func(ctx context.Context) error
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	// DefaultLockTTL applies to acquire and extend without ?ttl=.
	DefaultLockTTL time.Duration
}

// HTTPServer serves the API on a gin engine.
type HTTPServer struct {
	config config.HTTPConfig
	engine *gin.Engine
	server *http.Server
	logger logger.Logger
}

// NewHTTPServer creates the server and registers every route.
func NewHTTPServer(deps Dependencies, cfg config.HTTPConfig, log logger.Logger) *HTTPServer {
	log = logger.OrDiscard(log)
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.Tracing())
	engine.Use(middleware.Logging(log))

	s := &HTTPServer{config: cfg, engine: engine, logger: log}
	s.registerRoutes(deps)
	s.server = &http.Server{
		Addr:           cfg.Addr,
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
	return s
}

func (s *HTTPServer) registerRoutes(deps Dependencies) {
	ping := deps.Ping
	if ping == nil {
		ping = func(context.Context) error { return nil }
	}
	s.engine.GET("/health", handlers.NewHealthHandler(ping).Handle)
	if deps.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	home := s.engine.Group("/api/home")
	if deps.Queues != nil {
		qh := handlers.NewQueueHandler(deps.Queues, s.logger)
		home.POST("/send-message/:queue/:queueName", qh.SendMessage)
		home.GET("/receive-message/:queue/:queueName", qh.ReceiveMessage)
	}
	if deps.Locks != nil {
		lh := handlers.NewLockHandler(deps.Locks, deps.DefaultLockTTL, s.logger)
		home.POST("/acquire-lock/:category/:lockID", lh.Acquire)
		home.POST("/release-lock/:category/:lockID", lh.Release)
		home.POST("/extend-lock/:category/:lockID", lh.Extend)
		home.GET("/is-locked/:category/:lockID", lh.IsLocked)
	}
}

// Engine returns the gin engine, mainly for tests.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and blocks until Stop is called.
// It returns nil after a graceful shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
