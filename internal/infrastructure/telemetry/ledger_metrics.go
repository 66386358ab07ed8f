package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrBillType      = attribute.Key("bill_type")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrOperation     = attribute.Key("operation")
	AttrResult        = attribute.Key("result")
	AttrViewKind      = attribute.Key("view_kind")
)

var (
	// payment amounts in minor units, 100.00 to 100,000.00
	amountBuckets = []float64{10000, 50000, 100000, 250000, 500000, 1000000, 5000000, 10000000}
	// view refresh durations in seconds
	refreshBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2}
)

// LedgerMetrics records ledger activity and view synchronizer outcomes.
// All methods are safe on a nil receiver so callers may run without metrics.
type LedgerMetrics struct {
	billsCreated        metric.Int64Counter
	paymentsRecorded    metric.Int64Counter
	paymentAmount       metric.Int64Histogram
	compositeOperations metric.Int64Counter
	viewRefreshes       metric.Int64Counter
	viewRefreshDuration metric.Float64Histogram
	viewStaleWarnings   metric.Int64Counter
}

// NewLedgerMetrics creates the ledger instruments on the given meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var errs []error
	counter := func(name, description, unit string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
		errs = append(errs, err)
		return c
	}

	m := &LedgerMetrics{
		billsCreated:        counter("gym_bills_created_total", "Bills created", "{bills}"),
		paymentsRecorded:    counter("gym_payments_recorded_total", "Payments recorded", "{payments}"),
		compositeOperations: counter("gym_composite_operations_total", "Entitlement composite operations by result", "{operations}"),
		viewRefreshes:       counter("gym_view_refresh_total", "Cached view refreshes by result", "{refreshes}"),
		viewStaleWarnings:   counter("gym_view_stale_warnings_total", "Mutations whose forced refresh did not complete", "{warnings}"),
	}

	var err error
	m.paymentAmount, err = meter.Int64Histogram("gym_payment_amount_minor",
		metric.WithDescription("Payment amounts in minor currency units"),
		metric.WithUnit("{centavos}"),
		metric.WithExplicitBucketBoundaries(amountBuckets...),
	)
	errs = append(errs, err)
	m.viewRefreshDuration, err = meter.Float64Histogram("gym_view_refresh_duration_seconds",
		metric.WithDescription("Time spent recomputing a cached view"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(refreshBuckets...),
	)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("create ledger instruments: %w", err)
	}
	return m, nil
}

// RecordBillCreated counts a new bill.
func (m *LedgerMetrics) RecordBillCreated(ctx context.Context, billType string) {
	if m == nil {
		return
	}
	m.billsCreated.Add(ctx, 1, metric.WithAttributes(AttrBillType.String(billType)))
}

// RecordPayment counts a payment and records its amount.
func (m *LedgerMetrics) RecordPayment(ctx context.Context, method string, amountMinor int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrPaymentMethod.String(method))
	m.paymentsRecorded.Add(ctx, 1, attrs)
	m.paymentAmount.Record(ctx, amountMinor, attrs)
}

// RecordCompositeOperation counts a coordinator operation with result "committed" or "rolled_back".
func (m *LedgerMetrics) RecordCompositeOperation(ctx context.Context, operation string, committed bool) {
	if m == nil {
		return
	}
	result := "committed"
	if !committed {
		result = "rolled_back"
	}
	m.compositeOperations.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrResult.String(result)))
}

// RecordViewRefresh records a view refresh with result "ok", "error" or "timeout".
func (m *LedgerMetrics) RecordViewRefresh(ctx context.Context, viewKind, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.viewRefreshes.Add(ctx, 1, metric.WithAttributes(AttrViewKind.String(viewKind), AttrResult.String(result)))
	m.viewRefreshDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrViewKind.String(viewKind)))
}

// RecordStaleWarning counts a mutation that returned with a possibly stale view.
func (m *LedgerMetrics) RecordStaleWarning(ctx context.Context, viewKind string) {
	if m == nil {
		return
	}
	m.viewStaleWarnings.Add(ctx, 1, metric.WithAttributes(AttrViewKind.String(viewKind)))
}
