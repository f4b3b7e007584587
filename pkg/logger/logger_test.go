package logger

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewStandardLogger(log.New(&buf, "", 0), Debug, "[test]")

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		l.Info("info message", "key1", "value1", "key2", 123)
		assert.Contains(t, buf.String(), "[test] [INFO] info message")
		assert.Contains(t, buf.String(), "key1=value1")
		assert.Contains(t, buf.String(), "key2=123")
	})

	t.Run("Debug", func(t *testing.T) {
		buf.Reset()
		l.Debug("debug message")
		assert.Contains(t, buf.String(), "[DEBUG] debug message")
	})

	t.Run("Odd args", func(t *testing.T) {
		buf.Reset()
		l.Warn("dangling", "queue")
		assert.Contains(t, buf.String(), "queue=(no value)")
	})
}

func TestStandardLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	warnLogger := NewStandardLogger(log.New(&buf, "", 0), Warn, "[test]")

	warnLogger.Info("info message")
	assert.Zero(t, buf.Len(), "info should not be logged at warn level")

	warnLogger.Warn("warn message")
	assert.Contains(t, buf.String(), "[WARN] warn message")

	buf.Reset()
	warnLogger.LogMode(Silent).Error("error message")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"debug": Debug, "INFO": Info, "": Info, "warning": Warn, "error": Error, "off": Silent,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core), Info)

	l.Debug("hidden")
	l.Info("dispatched", "queue", "Queue1", "attempt", 2)
	l.Error("failed", "error", "boom")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "dispatched", entries[0].Message)
	assert.Equal(t, "Queue1", entries[0].ContextMap()["queue"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	l.LogMode(Debug).Debug("visible")
	assert.Equal(t, 3, logs.Len())
}

func TestNewZap(t *testing.T) {
	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "redisqueue.log")
		l, err := NewZap(ZapConfig{Level: "debug", Format: "json", Output: path, MaxSizeMB: 1})
		require.NoError(t, err)
		l.Info("hello", "k", "v")
		require.NoError(t, l.Sync())
		assert.FileExists(t, path)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := NewZap(ZapConfig{Format: "xml"})
		assert.Error(t, err)
	})
}

func TestOrDiscard(t *testing.T) {
	assert.Equal(t, Discard, OrDiscard(nil))
	l := New()
	assert.Equal(t, l, OrDiscard(l))
}
