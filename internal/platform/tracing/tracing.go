// Package tracing wraps the otel tracer calls entity services make.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "spoolman"

// Start opens a span named after the operation, e.g. "printer.Create".
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentation).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records *errp on the span, if set, and ends it. Call it deferred with
// the address of a named error return.
func End(span trace.Span, errp *error) {
	if errp != nil && *errp != nil {
		span.RecordError(*errp)
		span.SetStatus(codes.Error, (*errp).Error())
	}
	span.End()
}

// ID is the attribute key for entity ids.
func ID(id int64) attribute.KeyValue {
	return attribute.Int64("entity.id", id)
}
