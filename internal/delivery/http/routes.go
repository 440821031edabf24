package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/labelcheck/backend/config"
	"github.com/labelcheck/backend/internal/metrics"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(metrics.HTTPMetrics())
	router.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))

	// Health check and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("/resolve", handler.ResolveProduct)
			products.GET("/search", handler.SearchProducts)
			products.GET("/:barcode", handler.GetProduct)
			products.GET("/:barcode/analysis/:kind", handler.AnalyzeProduct)
		}

		regulations := v1.Group("/regulations")
		{
			regulations.GET("/banned", handler.ListBannedData)
			regulations.GET("/recalls", handler.ListRecalls)
			regulations.POST("/compliance", handler.CheckCompliance)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handler.CreateSession)
			sessions.GET("/:id", handler.GetSession)
			sessions.POST("/:id/chat", handler.Chat)
		}
	}

	return router
}
