package sqlmap

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/swiftkick/sqlmap"
	instrumentationVersion = "v0.1.0"
)

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	Enabled bool
	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider
}

// EnableTelemetry enables or disables OpenTelemetry tracing for this pool
func (p *Pool) EnableTelemetry(enabled bool) {
	if p == nil {
		return
	}
	p.telemetryEnabled = enabled
}

// SetTracerProvider sets a custom tracer provider for spans
func (p *Pool) SetTracerProvider(provider trace.TracerProvider) {
	if p == nil {
		return
	}
	p.tracerProvider = provider
}

func (p *Pool) tracer() trace.Tracer {
	if p.tracerProvider != nil {
		return p.tracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
	}
	return otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan creates a new span with common database attributes
func (p *Pool) startSpan(ctx context.Context, operation string, query string) (context.Context, trace.Span) {
	if p == nil || !p.telemetryEnabled {
		return ctx, trace.SpanFromContext(ctx)
	}

	ctx, span := p.tracer().Start(ctx, "sqlmap."+operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", p.dialect.System()),
		attribute.String("db.operation", operation),
	)
	if query != "" {
		span.SetAttributes(attribute.String("db.statement", query))
	}
	return ctx, span
}

// finishSpan completes a span with error handling
func (p *Pool) finishSpan(span trace.Span, err error) {
	if p == nil || !p.telemetryEnabled {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
