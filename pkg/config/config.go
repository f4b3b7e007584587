// Package config provides the configuration system for redisqueue.
//
// A Config is assembled in layers: Default values, an optional YAML or JSON
// settings file, environment variable overrides and finally functional
// options. Validate is run last.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/kart-io/redisqueue/pkg/logger"
)

// Config represents the unified configuration structure
type Config struct {
	Redis     RedisConfig      `json:"redis" yaml:"redis"`
	Queue     QueueConfig      `json:"queue" yaml:"queue"`
	Lock      LockConfig       `json:"lock" yaml:"lock"`
	Log       logger.ZapConfig `json:"log" yaml:"log"`
	Telemetry TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	HTTP      HTTPConfig       `json:"http" yaml:"http"`
}

// RedisConfig holds the connection settings of the shared store client and
// the key prefix applied to every queue and lock key.
type RedisConfig struct {
	Host            string        `json:"host" yaml:"host" env:"REDIS_HOST"`
	Port            int           `json:"port" yaml:"port" env:"REDIS_PORT"`
	Password        string        `json:"password" yaml:"password" env:"REDIS_PASSWORD"`
	Database        int           `json:"database" yaml:"database" env:"REDIS_DATABASE"`
	QueuePrefix     string        `json:"queue_prefix" yaml:"queue_prefix" env:"REDIS_QUEUE_PREFIX"`
	MaxRetries      int           `json:"max_retries" yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	MinRetryBackoff time.Duration `json:"min_retry_backoff" yaml:"min_retry_backoff" env:"REDIS_MIN_RETRY_BACKOFF"`
	MaxRetryBackoff time.Duration `json:"max_retry_backoff" yaml:"max_retry_backoff" env:"REDIS_MAX_RETRY_BACKOFF"`
	ConnectTimeout  time.Duration `json:"connect_timeout" yaml:"connect_timeout" env:"REDIS_CONNECT_TIMEOUT"`
	SyncTimeout     time.Duration `json:"sync_timeout" yaml:"sync_timeout" env:"REDIS_SYNC_TIMEOUT"`
	PoolSize        int           `json:"pool_size" yaml:"pool_size" env:"REDIS_POOL_SIZE"`
	MinIdleConns    int           `json:"min_idle_conns" yaml:"min_idle_conns" env:"REDIS_MIN_IDLE_CONNS"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// QueueConfig tunes the listener and the broadcast receive.
type QueueConfig struct {
	PollInterval      time.Duration `json:"poll_interval" yaml:"poll_interval" env:"QUEUE_POLL_INTERVAL"`
	PubSubWaitTimeout time.Duration `json:"pubsub_wait_timeout" yaml:"pubsub_wait_timeout" env:"QUEUE_PUBSUB_WAIT_TIMEOUT"`
}

// LockConfig holds lock defaults used by the HTTP and CLI surfaces.
type LockConfig struct {
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl" env:"LOCK_DEFAULT_TTL"`
}

// TelemetryConfig configures OpenTelemetry tracing and metrics.
type TelemetryConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled" env:"TELEMETRY_ENABLED"`
	ServiceName    string  `json:"service_name" yaml:"service_name" env:"TELEMETRY_SERVICE_NAME"`
	ServiceVersion string  `json:"service_version" yaml:"service_version" env:"TELEMETRY_SERVICE_VERSION"`
	Environment    string  `json:"environment" yaml:"environment" env:"TELEMETRY_ENVIRONMENT"`
	OTLPEndpoint   string  `json:"otlp_endpoint" yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure   bool    `json:"otlp_insecure" yaml:"otlp_insecure" env:"TELEMETRY_OTLP_INSECURE"`
	TracingEnabled bool    `json:"tracing_enabled" yaml:"tracing_enabled" env:"TELEMETRY_TRACING_ENABLED"`
	MetricsEnabled bool    `json:"metrics_enabled" yaml:"metrics_enabled" env:"TELEMETRY_METRICS_ENABLED"`
	SampleRate     float64 `json:"sample_rate" yaml:"sample_rate" env:"TELEMETRY_SAMPLE_RATE"`
}

// HTTPConfig configures the HTTP API server.
type HTTPConfig struct {
	Addr            string        `json:"addr" yaml:"addr" env:"HTTP_ADDR"`
	Mode            string        `json:"mode" yaml:"mode" env:"HTTP_MODE"` // gin mode: debug, release, test
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
}

// Option defines a functional option for configuration
type Option func(*Config) error

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Host:           "localhost",
			Port:           6379,
			QueuePrefix:    "redisqueue:",
			MaxRetries:     3,
			ConnectTimeout: 5 * time.Second,
			SyncTimeout:    5 * time.Second,
		},
		Queue: QueueConfig{
			PollInterval:      500 * time.Millisecond,
			PubSubWaitTimeout: time.Second,
		},
		Lock: LockConfig{
			DefaultTTL: 5 * time.Minute,
		},
		Log: logger.ZapConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "redisqueue",
			ServiceVersion: "0.1.0",
			Environment:    "development",
			OTLPEndpoint:   "localhost:4318",
			TracingEnabled: true,
			MetricsEnabled: true,
			SampleRate:     1.0,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// New creates a new configuration from defaults and the given options
func New(opts ...Option) (*Config, error) {
	cfg := Default()
	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply applies opts in order, stopping at the first error.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	return NewValidator().Validate(c).Err()
}
