package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skinlens/backend/config"
	"github.com/skinlens/backend/internal/pkg/logger"
)

// SetupRouter creates and configures the Gin router. A nil limiter
// disables per-IP rate limiting.
func SetupRouter(cfg *config.Config, handler *Handler, limiter *IPRateLimiter, log *logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(limiter))
	{
		v1.POST("/routines", handler.CreateRoutine)
		v1.POST("/progress", handler.SubmitProgress)
		v1.GET("/concerns", handler.ListConcerns)

		products := v1.Group("/products")
		{
			products.GET("", handler.SearchProducts)
			products.GET("/:id", handler.GetProduct)
		}

		catalog := v1.Group("/catalog")
		catalog.Use(AdminTokenMiddleware(cfg.Server.AdminToken))
		{
			catalog.POST("/reload", handler.ReloadCatalog)
			catalog.POST("/upload", handler.UploadCatalog)
		}
	}

	return router
}
