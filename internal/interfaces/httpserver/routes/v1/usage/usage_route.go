package usage

import (
	"github.com/gin-gonic/gin"

	"persona-chat/internal/interfaces/httpserver/handlers/usagehandler"
)

// UsageRoute handles quota routes
type UsageRoute struct {
	handler *usagehandler.UsageHandler
}

// NewUsageRoute creates a new UsageRoute
func NewUsageRoute(handler *usagehandler.UsageHandler) *UsageRoute {
	return &UsageRoute{handler: handler}
}

// RegisterRouter registers usage routes on the given router
func (r *UsageRoute) RegisterRouter(router gin.IRouter) {
	usageGroup := router.Group("/usage")
	{
		usageGroup.GET("", r.handler.GetUsage)
		usageGroup.GET("/stats", r.handler.GetUsageStats)
	}
}
