package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestReportMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewReportMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReport(ctx, "trial_balance", 3*time.Millisecond, nil)
	m.RecordReport(ctx, "trial_balance", time.Millisecond, errors.New("boom"))
	m.RecordImbalance(ctx)
	m.RecordSnapshotLoad(ctx)
	m.RecordSnapshotLoad(ctx)

	got := collect(t, reader)

	computed, ok := got["report.computed"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, computed.DataPoints, 2, "one series per outcome")

	imbalances, ok := got["report.trial_balance.imbalances"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, imbalances.DataPoints, 1)
	assert.Equal(t, int64(1), imbalances.DataPoints[0].Value)

	loads, ok := got["report.snapshot.loads"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), loads.DataPoints[0].Value)

	duration, ok := got["report.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, duration.DataPoints, 2)
}

func TestReportMetrics_NilReceiver(t *testing.T) {
	var m *telemetry.ReportMetrics
	assert.NotPanics(t, func() {
		m.RecordReport(context.Background(), "x", time.Second, nil)
		m.RecordImbalance(context.Background())
		m.RecordSnapshotLoad(context.Background())
	})
}

func TestReportMetrics_GlobalMeter(t *testing.T) {
	m, err := telemetry.NewReportMetrics(nil)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, mp.Shutdown(context.Background()))
}
