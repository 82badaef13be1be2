package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	pb "samaj-directory/api/directory/v1"
	"samaj-directory/cmd/api/di"
	"samaj-directory/internal/config"
)

func newContainer(t *testing.T) *di.Container {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.DB.Driver = "sqlite"
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "directory.db")
	cfg.Redis.Enabled = false
	cfg.RateLimit.Enabled = false
	cfg.Scheduler.Enabled = false

	c, err := di.NewContainer(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNew_RegistersServices(t *testing.T) {
	c := newContainer(t)
	s := New(c.Config, zaptest.NewLogger(t), c)

	info := s.GRPC.GetServiceInfo()
	require.Contains(t, info, pb.Directory_ServiceDesc.ServiceName)
	assert.Contains(t, info, "grpc.health.v1.Health")
	assert.Len(t, info[pb.Directory_ServiceDesc.ServiceName].Methods, 4)

	assert.Equal(t, ":"+c.Config.App.HTTPPort, s.Gin.Addr)
	w := httptest.NewRecorder()
	s.Gin.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
