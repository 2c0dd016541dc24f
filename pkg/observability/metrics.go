package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics bridges OpenTelemetry instruments onto the default Prometheus
// registry and installs the global MeterProvider. The returned handler serves
// both OTel instruments and collectors registered through promauto.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, fmt.Errorf("observability: create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(cfg.ServiceName)),
	)
	otel.SetMeterProvider(provider)

	return provider, promhttp.Handler(), nil
}

// ShutdownMetrics flushes and stops the provider.
func ShutdownMetrics(ctx context.Context, provider *sdkmetric.MeterProvider) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

func serviceResource(name string) *resource.Resource {
	return resource.NewSchemaless(semconv.ServiceName(name))
}
