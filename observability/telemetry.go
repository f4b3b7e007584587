// Package observability wires OpenTelemetry tracing and metrics for the
// redisqueue service.
//
// Instrumented packages (queue, lock, transport) only talk to the global
// otel providers. NewProvider installs real providers when telemetry is
// enabled; otherwise the globals stay no-op.
package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/logger"
)

const instrumentationName = "github.com/kart-io/redisqueue"

// TelemetryProvider owns the tracer and meter providers and the Prometheus
// registry metrics are exported through.
type TelemetryProvider struct {
	config         config.TelemetryConfig
	logger         logger.Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
}

// NewTelemetryProvider creates a new telemetry provider and installs it as
// the global otel provider when enabled.
func NewTelemetryProvider(ctx context.Context, cfg config.TelemetryConfig, log logger.Logger) (*TelemetryProvider, error) {
	tp := &TelemetryProvider{
		config: cfg,
		logger: logger.OrDiscard(log),
	}
	if !cfg.Enabled {
		tp.logger.Debug("Telemetry disabled")
		return tp, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	if cfg.TracingEnabled {
		if err := tp.initTracing(ctx, res); err != nil {
			return nil, fmt.Errorf("init tracing: %w", err)
		}
	}
	if cfg.MetricsEnabled {
		if err := tp.initMetrics(res); err != nil {
			return nil, fmt.Errorf("init metrics: %w", err)
		}
	}

	tp.logger.Info("Telemetry initialized",
		"service", cfg.ServiceName,
		"tracing", cfg.TracingEnabled,
		"metrics", cfg.MetricsEnabled,
		"otlpEndpoint", cfg.OTLPEndpoint)
	return tp, nil
}

func (tp *TelemetryProvider) initTracing(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint)}
	if tp.config.OTLPInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	tp.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tp.config.SampleRate))),
	)
	otel.SetTracerProvider(tp.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (tp *TelemetryProvider) initMetrics(res *resource.Resource) error {
	tp.registry = prometheus.NewRegistry()
	tp.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(tp.registry))
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}
	tp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(tp.meterProvider)
	return nil
}

// Enabled reports whether telemetry was switched on.
func (tp *TelemetryProvider) Enabled() bool { return tp.config.Enabled }

// Tracer returns a tracer from the global provider.
func (tp *TelemetryProvider) Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns a meter from the global provider.
func (tp *TelemetryProvider) Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// MetricsHandler serves the Prometheus exposition of all recorded metrics.
// It returns nil when metrics are disabled.
func (tp *TelemetryProvider) MetricsHandler() http.Handler {
	if tp.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(tp.registry, promhttp.HandlerOpts{Registry: tp.registry})
}

// Shutdown flushes and stops the providers.
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	var errs []error
	if tp.tracerProvider != nil {
		if err := tp.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if tp.meterProvider != nil {
		if err := tp.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
