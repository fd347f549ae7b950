package tracing

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer

// SetTracer sets the tracer to be used for tracing. nil turns tracing off.
func SetTracer(t trace.Tracer) {
	tracer = t
}

// GetActiveSpan returns the recording span carried by ctx, or nil when tracing is off
func GetActiveSpan(ctx context.Context) trace.Span {
	if tracer == nil {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	return span
}

// StartSpan starts a child span of whatever ctx carries. Without a tracer the span is a no-op.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, spanName)
}

// GetTraceID returns the active trace ID, or "" when nothing is traced
func GetTraceID(ctx context.Context) string {
	if span := GetActiveSpan(ctx); span != nil {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span ID, or ""
func GetSpanID(ctx context.Context) string {
	if span := GetActiveSpan(ctx); span != nil {
		return span.SpanContext().SpanID().String()
	}
	return ""
}
