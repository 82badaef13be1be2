package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "samaj-directory/internal/adapter/gin/handler"
	ginrouter "samaj-directory/internal/adapter/gin/router"
	grpcmiddleware "samaj-directory/internal/adapter/grpc/middleware"
	"samaj-directory/internal/config"
	"samaj-directory/pkg/metrics"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	cfg *config.Config,
	handler *ginhandler.DirectoryHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	m *metrics.Metrics,
	ginAddr string,
	l *zap.Logger,
) *http.Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := ginrouter.SetupRouter(handler, rateLimiter, m, ginrouter.Options{
		SwaggerEnabled: cfg.App.SwaggerEnabled,
	}, l)

	l.Info("Gin REST API configured",
		zap.String("address", ginAddr),
		zap.Bool("swagger", cfg.App.SwaggerEnabled),
	)

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
