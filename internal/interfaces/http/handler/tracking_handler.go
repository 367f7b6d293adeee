package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apptracking "github.com/oms/backend/internal/application/tracking"
)

// SyncRunner runs one tracking synchronization pass
type SyncRunner interface {
	Sync(ctx context.Context, req apptracking.SyncRequest) (*apptracking.SyncResult, error)
}

// TrackingHandler handles tracking synchronization HTTP requests
type TrackingHandler struct {
	BaseHandler
	runner SyncRunner
	logger *zap.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(runner SyncRunner, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		runner: runner,
		logger: logger.Named("tracking_handler"),
	}
}

// RegisterRoutes registers the tracking routes
func (h *TrackingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tracking := rg.Group("/tracking")
	tracking.POST("/sync", h.Sync)
}

// SyncRequestBody is the payload of a manual sync trigger. All fields are
// optional; an empty body synchronizes every active tenant with default
// filters.
type SyncRequestBody struct {
	TenantCodes []string          `json:"tenantCodes"`
	Filters     map[string]string `json:"filters"`
	TriggeredAt *time.Time        `json:"triggeredAt"`
}

// Sync triggers a synchronization run and returns its per-tenant results
func (h *TrackingHandler) Sync(c *gin.Context) {
	var body SyncRequestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	req := apptracking.SyncRequest{
		TenantCodes: body.TenantCodes,
		Filters:     body.Filters,
	}
	if body.TriggeredAt != nil {
		req.TriggeredAt = *body.TriggeredAt
	}

	result, err := h.runner.Sync(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("manual sync run failed", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, "SYNC_FAILED", err.Error())
		return
	}

	h.Success(c, result)
}
