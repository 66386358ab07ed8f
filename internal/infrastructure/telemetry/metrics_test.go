package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/QodexGroup/gym-management-system-sub002/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestMeterProvider_DisabledFallsBackToGlobal(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), telemetry.Config{Enabled: false, MetricsEnabled: true}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Meter.Enabled())

	m, err := telemetry.NewLedgerMetrics(p.Meter.Meter("test"))
	require.NoError(t, err)
	m.RecordBillCreated(context.Background(), "CUSTOM_AMOUNT")
	assert.NoError(t, p.Meter.Shutdown(context.Background()))
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestLedgerMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.LedgerMetrics
	ctx := context.Background()
	m.RecordBillCreated(ctx, "CUSTOM_AMOUNT")
	m.RecordPayment(ctx, "CASH", 100)
	m.RecordCompositeOperation(ctx, "assign_pt_package", true)
	m.RecordViewRefresh(ctx, "detail", "ok", time.Millisecond)
	m.RecordStaleWarning(ctx, "detail")
}

func TestLedgerMetrics_Noop(t *testing.T) {
	m, err := telemetry.NewLedgerMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	m.RecordPayment(context.Background(), "GCASH", 50000)
}

func TestLedgerMetrics_Collected(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBillCreated(ctx, "PT_PACKAGE")
	m.RecordBillCreated(ctx, "PT_PACKAGE")
	m.RecordStaleWarning(ctx, "detail")
	m.RecordPayment(ctx, "CASH", 150000)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			switch data := metric.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					totals[metric.Name] += dp.Value
				}
			case metricdata.Histogram[int64]:
				for _, dp := range data.DataPoints {
					totals[metric.Name] += dp.Sum
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["gym_bills_created_total"])
	assert.Equal(t, int64(1), totals["gym_view_stale_warnings_total"])
	assert.Equal(t, int64(1), totals["gym_payments_recorded_total"])
	assert.Equal(t, int64(150000), totals["gym_payment_amount_minor"])
}
