package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/forge-metrics/internal/config"
	"github.com/jonesrussell/forge-metrics/internal/logger"
	"github.com/jonesrussell/forge-metrics/internal/service"
)

// HealthChecker reports backend availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds HTTP request handlers
type Handler struct {
	catalog *service.Catalog
	health  HealthChecker
	cfg     *config.Config
	logger  logger.Logger
}

// NewHandler creates a new handler instance
func NewHandler(catalog *service.Catalog, health HealthChecker, cfg *config.Config, log logger.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		health:  health,
		cfg:     cfg,
		logger:  log,
	}
}

// Query runs a named metric from the catalog.
func (h *Handler) Query(c *gin.Context) {
	name := c.Param("name")

	repos := parseRepositories(c)
	params, err := parseQueryParams(c, h.cfg.Service.MaxPageSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     err.Error(),
			Code:      "INVALID_PARAMS",
			Timestamp: time.Now(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Service.QueryTimeout)
	defer cancel()

	result, err := h.catalog.Run(ctx, name, repos, params)
	if err != nil {
		if errors.Is(err, service.ErrUnknownQuery) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:     "no query named " + name,
				Code:      "UNKNOWN_QUERY",
				Timestamp: time.Now(),
			})
			return
		}
		h.logger.Error("Query failed",
			logger.String("query", name),
			logger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     err.Error(),
			Code:      "QUERY_ERROR",
			Timestamp: time.Now(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Queries lists the available query names.
func (h *Handler) Queries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"queries": h.catalog.Names()})
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.health.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.Service.Name,
		"version": h.cfg.Service.Version,
	})
}

// ReadinessCheck handles readiness check requests
func (h *Handler) ReadinessCheck(c *gin.Context) {
	h.HealthCheck(c)
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}
