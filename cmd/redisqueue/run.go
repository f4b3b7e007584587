package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kart-io/redisqueue"
	"github.com/kart-io/redisqueue/observability"
	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/logger"
	transporthttp "github.com/kart-io/redisqueue/transport/http"
)

// setup loads the configuration and builds the logger and the client.
// The returned cleanup flushes the logger and closes the client.
func setup(c *cli.Context) (*config.Config, *logger.ZapLogger, *redisqueue.Client, func(), error) {
	cfg, err := buildConfig(c)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to build config: %w", err)
	}

	log, err := logger.NewZap(cfg.Log)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	client, err := redisqueue.New(c.Context, redisqueue.WithConfig(cfg), redisqueue.WithLogger(log))
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	cleanup := func() {
		_ = client.Close()
		_ = log.Sync()
	}
	return cfg, log, client, cleanup, nil
}

func serve(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	log, err := logger.NewZap(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	log.Info("config",
		"redisAddr", cfg.Redis.Addr(),
		"database", cfg.Redis.Database,
		"queuePrefix", cfg.Redis.QueuePrefix,
		"pollInterval", cfg.Queue.PollInterval,
		"httpAddr", cfg.HTTP.Addr,
		"telemetry", cfg.Telemetry.Enabled,
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Telemetry comes first so instruments created below bind to its providers.
	telemetry, err := observability.NewTelemetryProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	client, err := redisqueue.New(ctx, redisqueue.WithConfig(cfg), redisqueue.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	server := transporthttp.NewHTTPServer(transporthttp.Dependencies{
		Queues:         client.Factory(),
		Locks:          client.Locks(),
		Ping:           client.Ping,
		Metrics:        telemetry.MetricsHandler(),
		DefaultLockTTL: cfg.Lock.DefaultTTL,
	}, cfg.HTTP, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Stop(shutdownCtx)
	})
	if !c.Bool("no-listener") {
		listener := client.Listener(redisqueue.LogProcessorFactory(log))
		g.Go(func() error { return listener.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("Shutdown complete")
	return nil
}
