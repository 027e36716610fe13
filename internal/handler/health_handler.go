package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stokline/skuflow_api/internal/utils"
)

// HealthHandler handles service health checks.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// GetHealth returns service liveness and uptime.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	utils.Success(c, 200, "Service healthy", gin.H{
		"status": "ok",
		"uptime": time.Since(h.startedAt).String(),
	})
}
