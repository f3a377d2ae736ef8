package chathandler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"persona-chat/internal/config"
	"persona-chat/internal/domain/chatturn"
	"persona-chat/internal/infrastructure/observability"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/utils/platformerrors"
)

const maxTurnBodyBytes = 1 << 20

// ChatHandler serves streamed chat turns.
type ChatHandler struct {
	coordinator *chatturn.Coordinator
	chunkDelay  time.Duration
	log         zerolog.Logger
}

func NewChatHandler(coordinator *chatturn.Coordinator, cfg *config.Config, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		coordinator: coordinator,
		chunkDelay:  cfg.StreamChunkDelay,
		log:         log.With().Str("component", "chat-handler").Logger(),
	}
}

// PostChat godoc
// @Summary Send a chat turn
// @Description Persists the user message, streams the character's answer as plain text and stores it once the stream ends.
// @Description The resolved conversation id is returned in the X-Conversation-Id header.
// @Tags Chat API
// @Security BearerAuth
// @Accept json
// @Produce plain
// @Param request body chatturn.Request true "Chat turn"
// @Success 200 {string} string "Streamed assistant text"
// @Header 200 {string} X-Conversation-Id "Resolved conversation id"
// @Failure 400 {object} responses.ErrorResponse "Invalid request"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 404 {object} responses.ErrorResponse "Unknown character or conversation"
// @Failure 429 {object} responses.QuotaExceededResponse "Daily message limit reached"
// @Failure 500 {object} responses.ErrorResponse "Storage failure"
// @Failure 502 {object} responses.ErrorResponse "Upstream failure"
// @Failure 503 {object} responses.ErrorResponse "Usage ledger unavailable"
// @Router /v1/chat [post]
func (h *ChatHandler) PostChat(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "c1d3e5f7-2a4b-4c6d-8e0f-1a3b5c7d9e21")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(reqCtx.Writer, reqCtx.Request.Body, maxTurnBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.HandleErrorWithStatus(reqCtx, http.StatusRequestEntityTooLarge, err, "request body too large")
			return
		}
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "unable to read request body", "d2e4f6a8-3b5c-4d7e-9f1a-2b4c6d8e0f32")
		return
	}

	ctx, span := observability.StartTurnSpan(reqCtx.Request.Context(), principal.ID)
	sink := newStreamWriter(reqCtx, h.chunkDelay)
	err = h.coordinator.HandleTurn(ctx, principal, body, sink)
	observability.EndTurnSpan(span, sink.conversationID, sink.Committed(), err)
	if err == nil {
		return
	}

	if !sink.Committed() {
		// X-Conversation-Id stays when the conversation was already stored, so the client can resend into it
		responses.HandleError(reqCtx, err, "chat turn failed")
		return
	}

	// The status line is already out: end the response without the terminating chunk so the client
	// sees a transport error instead of a clean end of stream.
	_ = reqCtx.Error(err)
	if reqCtx.Request.Context().Err() == nil {
		h.log.Warn().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(reqCtx)).
			Msg("stream truncated after commit")
		panic(http.ErrAbortHandler)
	}
}
