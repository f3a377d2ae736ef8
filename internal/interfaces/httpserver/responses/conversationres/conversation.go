package conversationres

import (
	"persona-chat/internal/domain/conversation"
)

// ConversationResponse represents a single conversation
type ConversationResponse struct {
	ID            string `json:"id"`
	Object        string `json:"object"`
	CharacterSlug string `json:"character_slug"`
	Title         string `json:"title"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
}

// MessageResponse is one stored message.
type MessageResponse struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

// ConversationDetailResponse is a conversation with its transcript in creation order.
type ConversationDetailResponse struct {
	ConversationResponse
	Messages []MessageResponse `json:"messages"`
}

type ConversationListResponse struct {
	Object  string                 `json:"object"`
	Data    []ConversationResponse `json:"data"`
	Total   int64                  `json:"total"`
	HasMore bool                   `json:"has_more"`
}

func NewConversationResponse(c *conversation.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:            c.ID,
		Object:        "conversation",
		CharacterSlug: c.CharacterSlug,
		Title:         c.TitleOrEmpty(),
		CreatedAt:     c.CreatedAt.Unix(),
		UpdatedAt:     c.UpdatedAt.Unix(),
	}
}

func NewConversationDetailResponse(c *conversation.Conversation, messages []*conversation.Message) *ConversationDetailResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Unix(),
		})
	}
	return &ConversationDetailResponse{
		ConversationResponse: *NewConversationResponse(c),
		Messages:             out,
	}
}

func NewConversationListResponse(conversations []*conversation.Conversation, total int64, offset int) *ConversationListResponse {
	data := make([]ConversationResponse, len(conversations))
	for i, c := range conversations {
		data[i] = *NewConversationResponse(c)
	}
	return &ConversationListResponse{
		Object:  "list",
		Data:    data,
		Total:   total,
		HasMore: int64(offset+len(data)) < total,
	}
}
