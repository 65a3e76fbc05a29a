package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/erp/reportengine/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDatabase struct {
	pingErr error
	stats   persistence.ConnectionStats
}

func (f *fakeDatabase) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("health ping without deadline")
	}
	return f.pingErr
}

func (f *fakeDatabase) Stats() (persistence.ConnectionStats, error) {
	return f.stats, nil
}

func newSystemEngine(db DatabaseChecker) *gin.Engine {
	h := NewSystemHandler("erp-reportengine", db)
	engine := gin.New()
	engine.GET("/health", h.Health)
	engine.GET("/system/info", h.Info)
	return engine
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy with pool stats", func(t *testing.T) {
		db := &fakeDatabase{stats: persistence.ConnectionStats{MaxOpenConnections: 25, Idle: 3}}
		w, resp := get(t, newSystemEngine(db), "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "healthy", data["status"])
		pool := data["pool"].(map[string]any)
		assert.EqualValues(t, 25, pool["max_open_connections"])
	})

	t.Run("database down", func(t *testing.T) {
		db := &fakeDatabase{pingErr: errors.New("connection refused")}
		w, resp := get(t, newSystemEngine(db), "/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "unhealthy", data["status"])
		assert.NotContains(t, data, "pool")
	})
}

func TestSystemHandler_Info(t *testing.T) {
	w, resp := get(t, newSystemEngine(&fakeDatabase{}), "/system/info")

	require.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "erp-reportengine", data["name"])
	assert.NotEmpty(t, data["go_version"])
}
