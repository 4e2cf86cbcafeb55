package mtl

import (
	"context"

	provider "github.com/kitex-contrib/obs-opentelemetry/provider"
)

// InitTracing installs an OTLP exporting provider. Metrics export stays off
// because prometheus owns them.
func InitTracing(serviceName, endpoint string) interface{ Shutdown(context.Context) error } {
	return provider.NewOpenTelemetryProvider(
		provider.WithServiceName(serviceName),
		provider.WithExportEndpoint(endpoint),
		provider.WithInsecure(),
		provider.WithEnableMetrics(false),
	)
}
