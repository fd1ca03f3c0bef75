package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PlatformPinger probes the content platform for reachability.
type PlatformPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	providers int
	platform  PlatformPinger
}

// NewHealthHandler creates a new HealthHandler. The pinger may be nil when no
// platform base URL is configured; readiness then checks providers only.
func NewHealthHandler(providers int, platform PlatformPinger) *HealthHandler {
	return &HealthHandler{providers: providers, platform: platform}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.providers == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "no model providers configured"})
		return
	}
	if h.platform != nil {
		if err := h.platform.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "providers": h.providers})
}
