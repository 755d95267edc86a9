package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/forge-metrics/internal/metrics"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler, m *metrics.Metrics) {
	// Health checks (no API prefix for standard health endpoints)
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadinessCheck)
	router.GET("/metrics", m.Handler())

	v0 := router.Group("/api/0")
	{
		v0.GET("/queries", handler.Queries)
		v0.GET("/query/:name", handler.Query)
	}
}
