package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestProfilingWithConfig_Disabled(t *testing.T) {
	called := false
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) {
		called = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingWithConfig_Enabled(t *testing.T) {
	var seen bool
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, "kept"))
		c.Next()
	})
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: true, SkipPaths: []string{"/health"}}))
	router.GET("/api/v1/reports/accounts/:kind", func(c *gin.Context) {
		ctx := c.Request.Context()
		assert.Equal(t, "kept", ctx.Value(ctxKey{}))

		route, ok := pprof.Label(ctx, ProfilingLabelRoute)
		seen = ok
		assert.Equal(t, "/api/v1/reports/accounts/:kind", route)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/accounts/customer", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen, "route label not attached")
}

func TestProfilingWithConfig_SkipPaths(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: true, SkipPaths: []string{"/health"}}))
	router.GET("/health", func(c *gin.Context) {
		_, labelled := pprof.Label(c.Request.Context(), ProfilingLabelRoute)
		assert.False(t, labelled)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/api/v1/reports/trial-balance", "trial-balance"},
		{"/api/v1/reports/accounts/:kind", "accounts"},
		{"/api/v1/system/info", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, reportFromRoute(tt.route))
		})
	}
}
