package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"samaj-directory/api/swagger"
	"samaj-directory/internal/adapter/gin/handler"
	"samaj-directory/internal/adapter/gin/middleware"
	grpcmiddleware "samaj-directory/internal/adapter/grpc/middleware"
	"samaj-directory/pkg/metrics"
)

// Options toggles the optional surfaces of the REST router.
type Options struct {
	SwaggerEnabled bool
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	directoryHandler *handler.DirectoryHandler,
	rateLimiter *grpcmiddleware.RateLimiter,
	m *metrics.Metrics,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(m.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "samaj-directory-gin",
		})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	if opts.SwaggerEnabled {
		ui := httpSwagger.Handler(httpSwagger.URL("/swagger/" + swagger.FileName))
		router.GET("/swagger/*any", func(c *gin.Context) {
			if c.Param("any") == "/"+swagger.FileName {
				c.Data(http.StatusOK, "application/json", swagger.Doc)
				return
			}
			ui(c.Writer, c.Request)
		})
	}

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimiter(rateLimiter))
	{
		v1.GET("/stats/counts", directoryHandler.Counts)
		v1.GET("/:collection", directoryHandler.ListPage)
		v1.POST("/:collection", directoryHandler.CreateItem)
		v1.GET("/:collection/:id", directoryHandler.GetItem)
		v1.DELETE("/:collection/:id", directoryHandler.DeleteItem)
	}

	return router
}
