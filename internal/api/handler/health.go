package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/timmy/retweets/internal/logger"
)

// ModelChecker reports whether the model server can serve predictions.
type ModelChecker interface {
	Status(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	model ModelChecker
}

// NewHealthHandler creates a new health handler. model may be nil.
func NewHealthHandler(model ModelChecker) *HealthHandler {
	return &HealthHandler{model: model}
}

// Health returns the health status of the service. The service is up even
// when the model is not; predictions then render the error view.
func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.model != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.model.Status(ctx); err != nil {
			logger.With(nil).WithStatus("unavailable").Warn(ctx, "Model check failed: %v", err)
			resp["model"] = "unavailable"
		} else {
			resp["model"] = "available"
		}
	}
	c.JSON(http.StatusOK, resp)
}
