package main

import (
	"github.com/urfave/cli/v2"

	"github.com/kart-io/redisqueue/pkg/config"
)

// globalFlags returns the flags shared by every command
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML or JSON settings file",
			EnvVars: []string{config.SettingsPathEnv},
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "redis-host",
			Usage: "Redis host (overrides settings)",
		},
		&cli.IntFlag{
			Name:  "redis-port",
			Usage: "Redis port (overrides settings)",
		},
		&cli.StringFlag{
			Name:  "queue-prefix",
			Usage: "Key prefix for queues and locks (overrides settings)",
		},
	}
}

// serveFlags returns the flags for the serve command
func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "http-addr",
			Usage: "HTTP listen address (overrides settings)",
		},
		&cli.DurationFlag{
			Name:  "poll-interval",
			Usage: "Listener pause between cycles (overrides settings)",
		},
		&cli.BoolFlag{
			Name:  "no-listener",
			Usage: "Serve the API without draining the FIFO queues",
		},
	}
}

// sendFlags returns the flags for the send command
func sendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "Delay before the message becomes eligible (DelayedQueue only)",
		},
	}
}

// ttlFlag is shared by lock acquire and extend.
func ttlFlag() cli.Flag {
	return &cli.DurationFlag{
		Name:  "ttl",
		Usage: "Lock lifetime, or the extension for extend (defaults to lock.default_ttl)",
	}
}

// buildConfig loads settings and applies any flag overrides on top.
func buildConfig(c *cli.Context) (*config.Config, error) {
	var opts []config.Option

	if c.IsSet("redis-host") || c.IsSet("redis-port") {
		host, port := c.String("redis-host"), c.Int("redis-port")
		opts = append(opts, func(cfg *config.Config) error {
			if host != "" {
				cfg.Redis.Host = host
			}
			if port != 0 {
				cfg.Redis.Port = port
			}
			return nil
		})
	}
	if c.IsSet("queue-prefix") {
		opts = append(opts, config.WithQueuePrefix(c.String("queue-prefix")))
	}
	if c.Bool("verbose") {
		opts = append(opts, func(cfg *config.Config) error {
			cfg.Log.Level = "debug"
			return nil
		})
	}
	if c.IsSet("http-addr") {
		opts = append(opts, config.WithHTTPAddr(c.String("http-addr")))
	}
	if c.IsSet("poll-interval") {
		opts = append(opts, config.WithPollInterval(c.Duration("poll-interval")))
	}

	return config.Load(c.String("config"), opts...)
}
