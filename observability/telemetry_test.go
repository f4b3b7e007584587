package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/logger"
)

func TestTelemetryProvider_Disabled(t *testing.T) {
	tp, err := NewTelemetryProvider(context.Background(), config.TelemetryConfig{}, nil)
	require.NoError(t, err)

	assert.False(t, tp.Enabled())
	assert.Nil(t, tp.MetricsHandler())
	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTelemetryProvider_Metrics(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Enabled = true
	cfg.TracingEnabled = false
	cfg.MetricsEnabled = true

	tp, err := NewTelemetryProvider(context.Background(), cfg, logger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	})

	counter, err := tp.Meter().Int64Counter("redisqueue_test_events_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3, metric.WithAttributes(attribute.String("queue.name", "Queue1")))

	handler := tp.MetricsHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "redisqueue_test_events_total")
	assert.Contains(t, string(body), `queue_name="Queue1"`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestTelemetryProvider_Tracing(t *testing.T) {
	cfg := config.Default().Telemetry
	cfg.Enabled = true
	cfg.MetricsEnabled = false
	cfg.OTLPInsecure = true

	tp, err := NewTelemetryProvider(context.Background(), cfg, logger.Discard)
	require.NoError(t, err)

	_, span := tp.Tracer().Start(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	// The exporter has no collector to talk to; only the shutdown path matters.
	_ = tp.Shutdown(ctx)
}
