package chathandler

import (
	"context"
	"net/http"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"

	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
)

// streamWriter forwards a turn's deltas to the client as a chunked text/plain body. Nothing is written
// to the wire until the first delta, so pre-stream failures still get a proper error status.
type streamWriter struct {
	reqCtx         *gin.Context
	delay          time.Duration
	conversationID string
	committed      bool
}

func newStreamWriter(reqCtx *gin.Context, delay time.Duration) *streamWriter {
	return &streamWriter{reqCtx: reqCtx, delay: delay}
}

// Begin exposes the resolved conversation id before any body byte is sent.
func (w *streamWriter) Begin(conversationID string) {
	w.conversationID = conversationID
	w.reqCtx.Header(middleware.ConversationIDHeader, conversationID)
}

func (w *streamWriter) Write(delta string) error {
	if delta == "" {
		return nil
	}
	if !w.committed {
		header := w.reqCtx.Writer.Header()
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("Cache-Control", "no-cache")
		header.Set("X-Accel-Buffering", "no")
		w.reqCtx.Status(http.StatusOK)
		w.reqCtx.Writer.WriteHeaderNow()
		w.committed = true
	}

	if w.delay <= 0 {
		return w.emit(delta)
	}
	for _, word := range splitWords(delta) {
		if err := w.emit(word); err != nil {
			return err
		}
		if err := sleepCtx(w.reqCtx.Request.Context(), w.delay); err != nil {
			return err
		}
	}
	return nil
}

func (w *streamWriter) emit(text string) error {
	if err := w.reqCtx.Request.Context().Err(); err != nil {
		return err
	}
	if _, err := w.reqCtx.Writer.WriteString(text); err != nil {
		return err
	}
	w.reqCtx.Writer.Flush()
	return nil
}

// Committed reports whether the status line and part of the body were sent.
func (w *streamWriter) Committed() bool {
	return w.committed
}

// splitWords cuts s after each run of whitespace, so joining the parts gives s back.
func splitWords(s string) []string {
	var (
		parts []string
		start int
		inWS  bool
	)
	for i, r := range s {
		ws := unicode.IsSpace(r)
		if inWS && !ws {
			parts = append(parts, s[start:i])
			start = i
		}
		inWS = ws
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

