package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printstarter/printstarter/internal/infrastructure/redis"
	"github.com/printstarter/printstarter/pkg/logger"
)

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	redis *redis.Connection
	log   logger.Logger
}

// NewHealthHandler creates the handler.
func NewHealthHandler(conn *redis.Connection, log logger.Logger) *HealthHandler {
	return &HealthHandler{redis: conn, log: log}
}

// LivenessCheck reports that the process is up.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck reports whether the service can govern requests. The
// store is the only hard dependency: rate limiting fails closed without
// it, so an unreachable store means not ready.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	checks := map[string]string{"redis": "ok"}
	status := http.StatusOK

	if err := h.redis.Ping(c.Request.Context()); err != nil {
		h.log.Warn(c.Request.Context(), "readiness check failed", logger.Err(err))
		checks["redis"] = "error: " + err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}
