package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs an in-memory span recorder as the global provider
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "report", "trial_balance",
		telemetry.SpanAttrFromDate, "2024-01-01",
		telemetry.SpanAttrRecords, 12,
		telemetry.SpanAttrBalanced, true,
		telemetry.SpanAttrSnapshotVersion, uint64(255),
		42, "skipped",
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "report.trial_balance", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "2024-01-01", attrs[telemetry.SpanAttrFromDate].AsString())
	assert.Equal(t, int64(12), attrs[telemetry.SpanAttrRecords].AsInt64())
	assert.True(t, attrs[telemetry.SpanAttrBalanced].AsBool())
	assert.Equal(t, "00000000000000ff", attrs[telemetry.SpanAttrSnapshotVersion].AsString())
	assert.Len(t, attrs, 4)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "report", "balance_sheet")
	telemetry.RecordError(span, errors.New("source unavailable"))
	telemetry.RecordError(span, nil)
	telemetry.RecordError(nil, errors.New("ignored"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "source unavailable", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestSetAttributes_NilSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.SetAttributes(nil, "key", "value")
	})
}
