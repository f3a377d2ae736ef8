package usagehandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/domain/usage"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/interfaces/httpserver/responses/usageres"
	"persona-chat/internal/utils/platformerrors"
)

// UsageHandler handles daily quota API requests
type UsageHandler struct {
	usageService *usage.Service
}

// NewUsageHandler creates a new UsageHandler
func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

// GetUsage godoc
// @Summary Get today's quota position
// @Description Returns how many messages the caller sent today (UTC), the daily limit and what remains.
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} usageres.UsageResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/usage [get]
func (h *UsageHandler) GetUsage(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "8f0b2d4f-6c7e-4a9b-9d1f-3b5d7f9b1dc8")
		return
	}

	snapshot, err := h.usageService.Today(c.Request.Context(), principal.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to get usage")
		return
	}

	c.JSON(http.StatusOK, usageres.NewUsageResponse(snapshot))
}

// GetUsageStats godoc
// @Summary Get usage statistics
// @Description Returns message counts for today, the last 7 days and the last 30 days (UTC days).
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} usageres.StatsResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/usage/stats [get]
func (h *UsageHandler) GetUsageStats(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "9a1c3e5a-7d8f-4bac-8e2a-4c6e8a0c2ed9")
		return
	}

	stats, err := h.usageService.Stats(c.Request.Context(), principal.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to get usage stats")
		return
	}

	c.JSON(http.StatusOK, usageres.NewStatsResponse(stats))
}
