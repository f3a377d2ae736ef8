package conversationhandler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/domain/conversation"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/interfaces/httpserver/responses/conversationres"
	"persona-chat/internal/utils/platformerrors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// ConversationHandler exposes the caller's conversations.
type ConversationHandler struct {
	conversations *conversation.ConversationService
}

func NewConversationHandler(conversations *conversation.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// UpdateConversationRequest renames a conversation.
type UpdateConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

// ListConversations godoc
// @Summary List conversations
// @Description Returns the caller's conversations, most recently active first.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param character query string false "Only conversations with this character"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} conversationres.ConversationListResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 500 {object} responses.ErrorResponse
// @Router /v1/conversations [get]
func (h *ConversationHandler) ListConversations(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "1e3a5c7e-9b0d-4f2a-8c4e-6a8c0e2a4c51")
		return
	}

	pagination, ok := parsePagination(reqCtx)
	if !ok {
		return
	}
	var characterSlug *string
	if slug := reqCtx.Query("character"); slug != "" {
		characterSlug = &slug
	}

	items, total, err := h.conversations.ListConversations(reqCtx.Request.Context(), principal.ID, characterSlug, pagination)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list conversations")
		return
	}
	reqCtx.JSON(http.StatusOK, conversationres.NewConversationListResponse(items, total, pagination.Offset))
}

// GetConversation godoc
// @Summary Get a conversation
// @Description Returns a conversation the caller owns with its messages in creation order.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} conversationres.ConversationDetailResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [get]
func (h *ConversationHandler) GetConversation(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "2f4b6d8f-0c1e-4a3b-9d5f-7b9d1f3b5d62")
		return
	}
	ctx := reqCtx.Request.Context()

	conv, err := h.conversations.GetConversationByIDAndUserID(ctx, reqCtx.Param("conversation_id"), principal.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "conversation not found")
		return
	}
	messages, err := h.conversations.GetMessages(ctx, conv)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to load messages")
		return
	}
	reqCtx.JSON(http.StatusOK, conversationres.NewConversationDetailResponse(conv, messages))
}

// UpdateConversation godoc
// @Summary Rename a conversation
// @Tags Conversations API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Param request body UpdateConversationRequest true "New title (1-50 characters)"
// @Success 200 {object} conversationres.ConversationResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [patch]
func (h *ConversationHandler) UpdateConversation(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "3a5c7e9a-1d2f-4b4c-8e6a-8c0e2a4c6e73")
		return
	}

	var req UpdateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "title is required", "4b6d8f0b-2e3a-4c5d-9f7b-9d1f3b5d7f84")
		return
	}

	conv, err := h.conversations.RenameConversation(reqCtx.Request.Context(), principal.ID, reqCtx.Param("conversation_id"), req.Title)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to rename conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, conversationres.NewConversationResponse(conv))
}

// DeleteConversation godoc
// @Summary Delete a conversation
// @Description Deletes a conversation the caller owns together with its messages.
// @Tags Conversations API
// @Security BearerAuth
// @Produce json
// @Param conversation_id path string true "Conversation ID"
// @Success 200 {object} responses.DeletedResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/conversations/{conversation_id} [delete]
func (h *ConversationHandler) DeleteConversation(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "5c7e9a1c-3f4b-4d6e-8a8c-0e2a4c6e8a95")
		return
	}

	id := reqCtx.Param("conversation_id")
	if err := h.conversations.DeleteConversation(reqCtx.Request.Context(), principal.ID, id); err != nil {
		responses.HandleError(reqCtx, err, "failed to delete conversation")
		return
	}
	reqCtx.JSON(http.StatusOK, responses.DeletedResponse{ID: id, Object: "conversation", Deleted: true})
}

func parsePagination(reqCtx *gin.Context) (*conversation.Pagination, bool) {
	pagination := &conversation.Pagination{Limit: defaultListLimit}
	if raw := reqCtx.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "limit must be a positive integer", "6d8f0b2d-4a5c-4e7f-9b9d-1f3b5d7f9ba6")
			return nil, false
		}
		pagination.Limit = min(limit, maxListLimit)
	}
	if raw := reqCtx.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "offset must be a non-negative integer", "7e9a1c3e-5b6d-4f8a-8c0e-2a4c6e8a0cb7")
			return nil, false
		}
		pagination.Offset = offset
	}
	return pagination, true
}
