package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/foliolink/folio_service/pkg/health"
	"github.com/foliolink/folio_service/pkg/version"
)

type HealthHandler struct {
	checker *health.HealthChecker
	logger  *zap.Logger
}

func NewHealthHandler(checker *health.HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// Health handles GET /health with per-component detail
func (h *HealthHandler) Health(c *gin.Context) {
	status, checks := h.checker.Check(c.Request.Context())

	code := http.StatusOK
	if status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, health.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Version:   version.Get().Version,
		Checks:    checks,
	})
}

// Live handles GET /live: process is up
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready handles GET /ready: dependencies are reachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.checker.IsHealthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
