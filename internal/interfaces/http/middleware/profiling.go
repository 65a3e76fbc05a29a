package middleware

import (
	"context"
	"strings"

	"github.com/erp/reportengine/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling label keys
const (
	ProfilingLabelRoute  = "route"
	ProfilingLabelMethod = "method"
	ProfilingLabelReport = "report"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are paths that don't need profiling labels (e.g., health checks).
	SkipPaths []string
}

// ProfilingWithConfig attaches Pyroscope labels to the samples taken while
// a request is handled:
//   - route: route pattern (e.g., "/api/v1/reports/accounts/:kind")
//   - method: HTTP method
//   - report: the report resource (e.g., "trial-balance")
//
// Labels use the route pattern, never the raw path, to keep cardinality low.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skipped := skip[c.Request.URL.Path]; skipped {
			c.Next()
			return
		}

		route := c.FullPath()
		telemetry.WithProfilingLabels(c.Request.Context(), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		},
			ProfilingLabelRoute, route,
			ProfilingLabelMethod, c.Request.Method,
			ProfilingLabelReport, reportFromRoute(route),
		)
	}
}

// reportFromRoute derives the report resource from a route pattern.
// Example: "/api/v1/reports/accounts/:kind" -> "accounts"
func reportFromRoute(route string) string {
	_, rest, found := strings.Cut(route, "/reports/")
	if !found {
		return ""
	}
	resource, _, _ := strings.Cut(rest, "/")
	return resource
}
