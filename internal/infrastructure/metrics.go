package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Metrics bundles the OpenTelemetry meter provider, the Prometheus scrape
// handler and the application's instruments.
type Metrics struct {
	provider *sdkmetric.MeterProvider

	// Handler serves the Prometheus exposition format; mount on /metrics.
	Handler http.Handler

	RequestCount      metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	TableLoads        metric.Int64Counter
	TableLoadDuration metric.Float64Histogram
	AggregationCount  metric.Int64Counter
}

// InitializeMetrics wires the OTel metrics pipeline with a Prometheus
// exporter and registers the application instruments.
func InitializeMetrics(serviceName, version string, logger *slog.Logger) (*Metrics, error) {
	// A dedicated registry keeps repeated initialization (and tests) from
	// colliding on the global default registerer
	registry := prometheus.NewRegistry()
	exporter, err := otelprometheus.New(otelprometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	meter := provider.Meter(serviceName)

	m := &Metrics{
		provider: provider,
		Handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if m.RequestCount, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total HTTP requests")); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.TableLoads, err = meter.Int64Counter("sentiment_table_loads_total",
		metric.WithDescription("Sentiment CSV loads, by result")); err != nil {
		return nil, err
	}
	if m.TableLoadDuration, err = meter.Float64Histogram("sentiment_table_load_seconds",
		metric.WithDescription("Sentiment CSV load duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.AggregationCount, err = meter.Int64Counter("breadth_aggregations_total",
		metric.WithDescription("Breadth aggregate computations, by kind")); err != nil {
		return nil, err
	}

	logger.Info("metrics pipeline initialized",
		slog.String("service", serviceName),
		slog.String("exporter", "prometheus"))

	return m, nil
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.RequestCount.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTableLoad records one load attempt of the sentiment CSV.
func (m *Metrics) RecordTableLoad(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.TableLoads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	m.TableLoadDuration.Record(ctx, duration.Seconds())
}

// RecordAggregation records one aggregate computation by kind
// (trend, day, meta, export).
func (m *Metrics) RecordAggregation(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.AggregationCount.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// Shutdown flushes and stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
