package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/redisqueue/pkg/errors"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "redisqueue:", cfg.Redis.QueuePrefix)
	assert.Equal(t, 5*time.Second, cfg.Redis.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Redis.SyncTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Queue.PollInterval)
	assert.Equal(t, time.Second, cfg.Queue.PubSubWaitTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Lock.DefaultTTL)
}

func TestNew_Options(t *testing.T) {
	cfg, err := New(
		WithRedisAddr("redis.internal", 6380),
		WithPassword("secret"),
		WithDatabase(2),
		WithQueuePrefix("app:"),
		WithMaxRetries(5),
		WithPollInterval(time.Second),
		WithPubSubWaitTimeout(2*time.Second),
		WithDefaultLockTTL(time.Minute),
		WithHTTPAddr(":9090"),
	)
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr())
	assert.Equal(t, "secret", cfg.Redis.Password)
	assert.Equal(t, 2, cfg.Redis.Database)
	assert.Equal(t, "app:", cfg.Redis.QueuePrefix)
	assert.Equal(t, 5, cfg.Redis.MaxRetries)
	assert.Equal(t, time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Queue.PubSubWaitTimeout)
	assert.Equal(t, time.Minute, cfg.Lock.DefaultTTL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestNew_OptionError(t *testing.T) {
	_, err := New(WithPollInterval(0))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "blank host", mutate: func(c *Config) { c.Redis.Host = " " }, field: "redis.host", wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Redis.Port = 70000 }, field: "redis.port", wantErr: true},
		{name: "negative db", mutate: func(c *Config) { c.Redis.Database = -1 }, field: "redis.database", wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.Queue.PollInterval = 0 }, field: "queue.poll_interval", wantErr: true},
		{name: "zero lock ttl", mutate: func(c *Config) { c.Lock.DefaultTTL = 0 }, field: "lock.default_ttl", wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, field: "log.level", wantErr: true},
		{name: "bad sample rate", mutate: func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.SampleRate = 2
		}, field: "telemetry.sample_rate", wantErr: true},
		{name: "bad http mode", mutate: func(c *Config) { c.HTTP.Mode = "fast" }, field: "http.mode", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			result := NewValidator().Validate(cfg)
			if !tt.wantErr {
				assert.True(t, result.Valid)
				assert.NoError(t, cfg.Validate())
				return
			}
			require.False(t, result.Valid)
			assert.Equal(t, tt.field, result.Errors[0].Field)
			assert.True(t, errors.IsConfigError(cfg.Validate()))
		})
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Redis.Host = ""
	cfg.Redis.Port = 0
	result := NewValidator().Validate(cfg)
	assert.Len(t, result.Errors, 2)
	assert.Contains(t, result.Err().Error(), "redis.host")
	assert.Contains(t, result.Err().Error(), "redis.port")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
redis:
  host: cache.local
  port: 6390
  queue_prefix: "orders:"
  sync_timeout: 2s
queue:
  poll_interval: 250ms
`), 0o600))

	t.Setenv("REDIS_PASSWORD", "from-env")
	t.Setenv("REDIS_PORT", "6391")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "cache.local", cfg.Redis.Host)
	assert.Equal(t, 6391, cfg.Redis.Port, "environment overrides the file")
	assert.Equal(t, "from-env", cfg.Redis.Password)
	assert.Equal(t, "orders:", cfg.Redis.QueuePrefix)
	assert.Equal(t, 2*time.Second, cfg.Redis.SyncTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Queue.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Redis.ConnectTimeout, "unset keys keep defaults")
}

func TestLoad_JSONFromSettingsPathEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appsettings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"redis": {"host": "json-host", "database": 3, "max_retries": 7}}`), 0o600))
	t.Setenv(SettingsPathEnv, path)

	cfg, err := Load("", WithQueuePrefix("opt:"))
	require.NoError(t, err)
	assert.Equal(t, "json-host", cfg.Redis.Host)
	assert.Equal(t, 3, cfg.Redis.Database)
	assert.Equal(t, 7, cfg.Redis.MaxRetries)
	assert.Equal(t, "opt:", cfg.Redis.QueuePrefix)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("REDIS_PORT", "not-a-port")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Setenv("QUEUE_POLL_INTERVAL", "0s")
		_, err := Load("")
		assert.True(t, errors.IsConfigError(err))
	})
}
