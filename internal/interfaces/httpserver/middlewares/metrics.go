package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/infrastructure/metrics"
)

// health check routes would drown the request histograms
var unmeasuredRoutes = map[string]bool{
	"/metrics": true,
	"/healthz": true,
	"/readyz":  true,
}

// MetricsMiddleware records per-route request counts and latency.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if unmeasuredRoutes[route] {
			return
		}
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(started).Seconds())
		metrics.RecordUserAgent(c.Request.UserAgent())
	}
}
