package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CheckFunc probes one dependency
type CheckFunc func(ctx context.Context) error

// HealthHandler reports the liveness of the service and its dependencies
type HealthHandler struct {
	checks map[string]CheckFunc
}

// NewHealthHandler creates a health handler with named dependency checks
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// RegisterRoutes registers the health route on the engine root
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
}

// Health returns 200 when every dependency is reachable, 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			deps[name] = "down: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	body := gin.H{"status": "ok", "dependencies": deps}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
