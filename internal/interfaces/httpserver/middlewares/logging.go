package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"persona-chat/internal/infrastructure/observability"
)

// LoggingMiddleware writes one access log line per request once the handler is done. Streamed turns
// are logged when the stream ends, so latency covers the whole answer.
func LoggingMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		if traceID, spanID := observability.TraceIDs(c.Request.Context()); traceID != "" {
			event = event.Str("trace_id", traceID).Str("span_id", spanID)
		}
		if requestID := RequestIDFromContext(c); requestID != "" {
			event = event.Str("request_id", requestID)
		}
		if principal, ok := PrincipalFromContext(c); ok {
			event = event.Str("user_id", principal.ID)
		}
		if conversationID := c.Writer.Header().Get(ConversationIDHeader); conversationID != "" {
			event = event.Str("conversation_id", conversationID)
		}

		// the raw query is left out; it can carry conversation ids
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", c.FullPath()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg(c.Errors.ByType(gin.ErrorTypePrivate).String())
	}
}
