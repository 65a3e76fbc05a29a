package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterName is the meter used for report metrics
const MeterName = "erp-reportengine"

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates an OTLP-exporting MeterProvider and installs it
// globally. If telemetry is disabled the global no-op meter stays in place.
func NewMeterProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		return mp, nil
	}

	interval := cfg.MetricsInterval
	if interval == 0 {
		interval = 60 * time.Second
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics and stops the provider.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Metric attribute keys
var (
	AttrReport  = attribute.Key("report")
	AttrOutcome = attribute.Key("outcome")
)

// ReportMetrics records report computations
type ReportMetrics struct {
	duration      metric.Float64Histogram
	computed      metric.Int64Counter
	imbalances    metric.Int64Counter
	snapshotLoads metric.Int64Counter
}

// NewReportMetrics creates the report instruments on meter.
// A nil meter uses the global meter provider.
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(MeterName)
	}

	duration, err := meter.Float64Histogram("report.duration",
		metric.WithDescription("Report computation time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report.duration histogram: %w", err)
	}
	computed, err := meter.Int64Counter("report.computed",
		metric.WithDescription("Reports computed, by report and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create report.computed counter: %w", err)
	}
	imbalances, err := meter.Int64Counter("report.trial_balance.imbalances",
		metric.WithDescription("Trial balances that did not balance"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create imbalance counter: %w", err)
	}
	snapshots, err := meter.Int64Counter("report.snapshot.loads",
		metric.WithDescription("Ledger snapshots loaded from the source"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot counter: %w", err)
	}

	return &ReportMetrics{
		duration:      duration,
		computed:      computed,
		imbalances:    imbalances,
		snapshotLoads: snapshots,
	}, nil
}

// RecordReport records one report computation
func (m *ReportMetrics) RecordReport(ctx context.Context, report string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(AttrReport.String(report), AttrOutcome.String(outcome))
	m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	m.computed.Add(ctx, 1, attrs)
}

// RecordImbalance counts an unbalanced trial balance
func (m *ReportMetrics) RecordImbalance(ctx context.Context) {
	if m == nil {
		return
	}
	m.imbalances.Add(ctx, 1)
}

// RecordSnapshotLoad counts a snapshot read from the ledger source
func (m *ReportMetrics) RecordSnapshotLoad(ctx context.Context) {
	if m == nil {
		return
	}
	m.snapshotLoads.Add(ctx, 1)
}
