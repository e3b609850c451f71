// Package trace owns the process tracer provider. Tracing is off unless
// LOG_TRACING_ENABLED=true; when off every helper is a cheap no-op.
package trace

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
)

// Init installs a stdout exporter for service. Spans go to stderr so command
// output on stdout stays machine readable. LOG_TRACE_SAMPLE_RATIO (0..1)
// samples root spans; children follow their parent.
func Init(service, version string) error {
	enabled = os.Getenv("LOG_TRACING_ENABLED") == "true"
	if !enabled {
		return nil
	}

	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		enabled = false
		return err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(service),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		enabled = false
		return err
	}

	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio()))),
	)
	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(service)
	return nil
}

func sampleRatio() float64 {
	r, err := strconv.ParseFloat(os.Getenv("LOG_TRACE_SAMPLE_RATIO"), 64)
	if err != nil || r < 0 || r > 1 {
		return 1
	}
	return r
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	err := provider.Shutdown(ctx)
	provider, tracer, enabled = nil, nil, false
	return err
}

// StartSpan starts a child of the span in ctx. With tracing off it returns
// ctx unchanged together with its current (possibly no-op) span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

func Enabled() bool { return enabled }

// GetTraceFields returns the ids of the recording span in ctx.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !enabled {
		return "", "", false
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
