package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const (
	ServiceName    = "vaschooldata"
	ServiceVersion = "1.0.0"
)

// TelemetryProviders holds the OpenTelemetry providers. PrometheusHTTP is a
// ready-to-mount scrape handler for callers that run a server; library users
// can ignore it.
type TelemetryProviders struct {
	MeterProvider  *sdkmetric.MeterProvider
	PrometheusHTTP http.Handler
}

// InitializeTelemetry wires the global OTel meter provider to a Prometheus
// exporter. Pipeline packages register their counters against the global
// meter; without this call all instrumentation is a no-op.
func InitializeTelemetry(logger *slog.Logger) (*TelemetryProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to build otel resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	logger.Info("telemetry initialized",
		slog.String("service", ServiceName),
		slog.String("exporter", "prometheus"))

	return &TelemetryProviders{
		MeterProvider:  provider,
		PrometheusHTTP: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// Shutdown flushes and stops the meter provider.
func (p *TelemetryProviders) Shutdown(ctx context.Context) error {
	if p == nil || p.MeterProvider == nil {
		return nil
	}
	return p.MeterProvider.Shutdown(ctx)
}
