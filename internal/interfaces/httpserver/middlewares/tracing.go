package middlewares

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"persona-chat/internal/infrastructure/observability"
)

// TracingMiddleware opens a server span per request, continuing any W3C trace context the caller sent.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	tracer := otel.Tracer(serviceName)
	propagator := propagation.TraceContext{}

	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		name := c.Request.Method + " " + route
		if route == "" {
			name = c.Request.Method + " unmatched"
		}

		ctx, span := tracer.Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPRoute(route),
				semconv.HTTPUserAgent(c.Request.UserAgent()),
				observability.AttrRequestID.String(RequestIDFromContext(c)),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if principal, ok := PrincipalFromContext(c); ok {
			span.SetAttributes(observability.AttrUserID.String(principal.ID))
		}
		if conversationID := c.Writer.Header().Get(ConversationIDHeader); conversationID != "" {
			span.SetAttributes(observability.AttrConversationID.String(conversationID))
		}
		// 4xx are the caller's problem and stay unset
		if status >= 500 {
			span.SetStatus(codes.Error, c.Errors.String())
			if last := c.Errors.Last(); last != nil {
				span.RecordError(last.Err)
			}
		}
	}
}
