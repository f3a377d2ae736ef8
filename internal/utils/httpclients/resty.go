package httpclients

import (
	"context"
	"time"

	"resty.dev/v3"

	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/utils/platformerrors"
)

type httpClientStartsAt struct{}

// NewClient returns a resty client that logs every call at debug level. Bodies are never logged since
// they carry conversation text.
func NewClient(clientName string, timeout time.Duration) *resty.Client {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), httpClientStartsAt{}, time.Now()))
		if requestID := platformerrors.RequestIDFromContext(r.Context()); requestID != "" {
			r.SetHeader("X-Request-Id", requestID)
		}
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		log := logger.GetLogger()
		startTime, _ := r.Request.Context().Value(httpClientStartsAt{}).(time.Time)

		event := log.Debug().
			Str("request_id", platformerrors.RequestIDFromContext(r.Request.Context())).
			Str("client", clientName).
			Int("status", r.StatusCode()).
			Dur("latency", time.Since(startTime))
		if raw := r.Request.RawRequest; raw != nil {
			event = event.Str("method", raw.Method).Str("path", raw.URL.Path)
		}
		event.Bool("streamed", r.Request.DoNotParseResponse).Msg("HTTP client request")
		return nil
	})
	return client
}
