package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter and installs the
// resulting MeterProvider globally so instruments created with otel.Meter are
// exported. Returns the provider, a /metrics handler and a shutdown func.
func InitMetrics(_ MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, func(context.Context) error, error) {
	exporter, err := promexporter.New()
	if err != nil {
		return nil, nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	return provider, promhttp.Handler(), provider.Shutdown, nil
}
