// Package observability provides OpenTelemetry integration for
// distributed tracing.
//
// Traces are exported over OTLP HTTP to a local collector agent; the
// agent handles authentication and forwarding, so no backend credentials
// pass through the application. Tracing is off unless an endpoint is
// configured, and an exporter that fails to initialize disables tracing
// with a warning instead of failing startup.
//
// Environment variables (optional):
//   - DOCBOT_OTLP_ENDPOINT: collector OTLP HTTP endpoint (e.g. localhost:4318)
//   - DOCBOT_ENVIRONMENT: deployment environment tag (default: dev)
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is the service name reported on every span.
const ServiceName = "docbot"

// Config for tracing setup.
type Config struct {
	// Endpoint is the collector OTLP HTTP endpoint. Empty disables tracing.
	Endpoint string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
}

// Setup installs the global tracer provider exporting to the configured
// collector. Returns a shutdown function that flushes pending spans.
// With no endpoint configured, tracing stays disabled and the returned
// shutdown is a no-op.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" {
		logger.Debug("tracing disabled, no collector endpoint configured")
		return noop, nil
	}

	// The default SDK resource picks these up for span attribution.
	_ = os.Setenv("OTEL_SERVICE_NAME", ServiceName)
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(), // local agent, no TLS
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return noop, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", ServiceName,
		"environment", cfg.Environment,
	)
	return tp.Shutdown, nil
}
