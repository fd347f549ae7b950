package tracing

import (
	"context"

	"github.com/Gobusters/ectologger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/clover/pkg/tracing/exporters"
)

// Setup installs a tracer provider that reports finished spans to logger and returns a
// shutdown func that flushes it and clears the package tracer.
func Setup(serviceName string, logger ectologger.Logger) func(context.Context) error {
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporters.NewConsoleExporter(logger)),
	)
	SetTracer(provider.Tracer(serviceName))

	return func(ctx context.Context) error {
		SetTracer(nil)
		return provider.Shutdown(ctx)
	}
}
