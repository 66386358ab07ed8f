// Package telemetry wires OpenTelemetry tracing, metrics and log export
// for the ledger services.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName names the tracer used for ledger and synchronizer spans
const TracerName = "gym-ledger"

// Span attribute keys used by the ledger services
const (
	SpanAttrCustomerID   = "customer_id"
	SpanAttrBillID       = "bill_id"
	SpanAttrBillType     = "bill_type"
	SpanAttrBillStatus   = "bill_status"
	SpanAttrPaymentID    = "payment_id"
	SpanAttrAmount       = "amount_minor"
	SpanAttrPlanID       = "membership_plan_id"
	SpanAttrPackageID    = "pt_package_id"
	SpanAttrAllocationID = "allocation_id"
	SpanAttrViewKey      = "view_key"
	SpanAttrViewFresh    = "view_fresh"
)

// SpanOption adds start-time attributes to a span
type SpanOption func(attrs []attribute.KeyValue) []attribute.KeyValue

// WithAttribute sets key on the span when it starts
func WithAttribute(key string, value any) SpanOption {
	return func(attrs []attribute.KeyValue) []attribute.KeyValue {
		return append(attrs, attributeOf(key, value))
	}
}

// StartSpan starts an internal span on the global provider. The caller ends it.
//
//	ctx, span := telemetry.StartSpan(ctx, "bill.create")
//	defer span.End()
func StartSpan(ctx context.Context, name string, opts ...SpanOption) (context.Context, trace.Span) {
	var attrs []attribute.KeyValue
	for _, opt := range opts {
		attrs = opt(attrs)
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartServiceSpan starts the span of one service operation, named
// "{service}.{operation}" such as "bill.add_payment".
func StartServiceSpan(ctx context.Context, service, operation string, opts ...SpanOption) (context.Context, trace.Span) {
	return StartSpan(ctx, service+"."+operation, opts...)
}

// SetAttributes sets alternating key/value pairs. Pairs with a non-string key are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	span.SetAttributes(attributes(keyValues)...)
}

// SetAttribute sets one attribute
func SetAttribute(span trace.Span, key string, value any) {
	span.SetAttributes(attributeOf(key, value))
}

// RecordError marks the span failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span successful
func SetOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent records a named step inside the span, e.g. the void step of a PT cancellation
func AddEvent(span trace.Span, name string, keyValues ...any) {
	span.AddEvent(name, trace.WithAttributes(attributes(keyValues)...))
}

// GetTraceID returns the trace id carried by ctx, or "" outside a trace
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

func attributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, attributeOf(key, keyValues[i+1]))
		}
	}
	return attrs
}

// attributeOf maps the value types the services use; ids and statuses go
// through fmt.Stringer.
func attributeOf(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case float64:
		return attribute.Float64(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
