package config

import (
	"fmt"
	"strings"

	"github.com/kart-io/redisqueue/pkg/errors"
	"github.com/kart-io/redisqueue/pkg/logger"
)

// ValidationResult represents the result of configuration validation
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Err folds the result into a single INVALID_CONFIG error, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.String()
	}
	return errors.New(errors.ErrInvalidConfig, strings.Join(msgs, "; "))
}

func (r *ValidationResult) add(field, format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validator provides configuration validation functionality
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks every section of cfg and collects all problems.
func (v *Validator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{Valid: true}
	if cfg == nil {
		result.add("config", "must not be nil")
		return result
	}

	v.validateRedis(&cfg.Redis, result)
	v.validateQueue(&cfg.Queue, result)

	if cfg.Lock.DefaultTTL <= 0 {
		result.add("lock.default_ttl", "must be positive, got %s", cfg.Lock.DefaultTTL)
	}
	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		result.add("log.level", "%v", err)
	}
	if t := cfg.Telemetry; t.Enabled {
		if t.ServiceName == "" {
			result.add("telemetry.service_name", "required when telemetry is enabled")
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			result.add("telemetry.sample_rate", "must be within [0, 1], got %v", t.SampleRate)
		}
	}
	switch cfg.HTTP.Mode {
	case "", "debug", "release", "test":
	default:
		result.add("http.mode", "unknown mode %q", cfg.HTTP.Mode)
	}
	return result
}

func (v *Validator) validateRedis(r *RedisConfig, result *ValidationResult) {
	if strings.TrimSpace(r.Host) == "" {
		result.add("redis.host", "required")
	}
	if r.Port <= 0 || r.Port > 65535 {
		result.add("redis.port", "must be within 1-65535, got %d", r.Port)
	}
	if r.Database < 0 {
		result.add("redis.database", "must not be negative, got %d", r.Database)
	}
	if r.MaxRetries < -1 {
		result.add("redis.max_retries", "must be -1 (disabled) or greater, got %d", r.MaxRetries)
	}
	if r.ConnectTimeout < 0 || r.SyncTimeout < 0 {
		result.add("redis.timeouts", "must not be negative")
	}
	if r.PoolSize < 0 {
		result.add("redis.pool_size", "must not be negative, got %d", r.PoolSize)
	}
}

func (v *Validator) validateQueue(q *QueueConfig, result *ValidationResult) {
	if q.PollInterval <= 0 {
		result.add("queue.poll_interval", "must be positive, got %s", q.PollInterval)
	}
	if q.PubSubWaitTimeout <= 0 {
		result.add("queue.pubsub_wait_timeout", "must be positive, got %s", q.PubSubWaitTimeout)
	}
}
