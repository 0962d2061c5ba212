package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of reconciliation spans
const TracerName = "reconcile"

// Tracer wraps an OpenTelemetry tracer with the span conventions used by the service.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer. A nil tracer uses the global provider.
func NewTracer(tracer trace.Tracer) *Tracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &Tracer{tracer: tracer}
}

// Start opens an internal span named after a reconciliation stage
func (t *Tracer) Start(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, stage, trace.WithSpanKind(trace.SpanKindInternal))
	span.SetAttributes(attribute.String("reconcile.stage", stage))
	span.SetAttributes(attrs...)
	return ctx, span
}

// End sets the span status from err and ends it
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "ok")
	}
	span.End()
}
