package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		ServiceName:       "test-service",
	}, logger)
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))

	before := otel.GetTracerProvider()
	tp.EnableSpanProfiles()
	assert.Same(t, before, otel.GetTracerProvider(), "disabled tracing keeps the global provider")

	assert.NoError(t, tp.Shutdown(ctx))
}
