package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/reportengine/internal/infrastructure/logger"
	"github.com/erp/reportengine/internal/infrastructure/persistence"
	"github.com/erp/reportengine/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// healthCheckTimeout bounds the database ping of a health probe
const healthCheckTimeout = 2 * time.Second

// DatabaseChecker reports the state of the database connection
type DatabaseChecker interface {
	Ping(ctx context.Context) error
	Stats() (persistence.ConnectionStats, error)
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	db        DatabaseChecker
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, db DatabaseChecker) *SystemHandler {
	return &SystemHandler{
		name:      name,
		db:        db,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health probe response
type HealthResponse struct {
	Status   string                       `json:"status"`
	Database string                       `json:"database"`
	Pool     *persistence.ConnectionStats `json:"pool,omitempty"`
}

// Health godoc
//
//	@Summary	Liveness and database readiness
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	dto.Response
//	@Failure	503	{object}	dto.Response
//	@Router		/health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.L(ctx).Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(HealthResponse{
			Status:   "unhealthy",
			Database: "unreachable",
		}))
		return
	}

	resp := HealthResponse{Status: "healthy", Database: "ok"}
	if stats, err := h.db.Stats(); err == nil {
		resp.Pool = &stats
	}
	h.Success(c, resp)
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Info godoc
//
//	@Summary	Service name, Go version and uptime
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	dto.Response
//	@Router		/api/v1/system/info [get]
func (h *SystemHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
