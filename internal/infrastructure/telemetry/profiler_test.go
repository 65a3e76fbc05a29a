package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "erp-reportengine"}, zap.NewNop())
	assert.ErrorContains(t, err, "server address")

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zap.NewNop())
	assert.ErrorContains(t, err, "application name")
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("x", 100)

	var report, method, branch string
	var hasBranch bool
	WithProfilingLabels(context.Background(), func(ctx context.Context) {
		report, _ = pprof.Label(ctx, "report")
		method, _ = pprof.Label(ctx, "valuation_method")
		branch, hasBranch = pprof.Label(ctx, "branch")
	}, "report", "trial_balance", "valuation_method", long, "branch", "")

	assert.Equal(t, "trial_balance", report)
	assert.Len(t, method, maxLabelValueLength)
	assert.False(t, hasBranch, "empty values are skipped")
	assert.Empty(t, branch)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), func(context.Context) { called = true })
	assert.True(t, called)
}
