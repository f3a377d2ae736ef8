package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Recovery turns handler panics into 500 responses. http.ErrAbortHandler is passed on so net/http
// drops the connection, which is how a chat stream that failed after its first byte is cut short.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			panic(http.ErrAbortHandler)
		}
		logger.Error().
			Interface("panic", recovered).
			Str("request_id", RequestIDFromContext(c)).
			Str("path", c.Request.URL.Path).
			Msg("handler panicked")
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Abort()
	})
}
