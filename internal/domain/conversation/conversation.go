package conversation

import (
	"context"
	"time"
)

// TitleMaxLength bounds stored titles, both the placeholder and generated ones.
const TitleMaxLength = 50

// Conversation is a persistent thread between one user and one character.
type Conversation struct {
	ID            string
	UserID        string
	CharacterSlug string
	Title         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TitleOrEmpty returns the stored title or "" when none was set.
func (c *Conversation) TitleOrEmpty() string {
	if c == nil || c.Title == nil {
		return ""
	}
	return *c.Title
}

// ConversationFilter narrows conversation listings.
type ConversationFilter struct {
	UserID        *string
	CharacterSlug *string
}

// Pagination is a simple offset/limit window. Limit <= 0 means no limit.
type Pagination struct {
	Limit  int
	Offset int
}

// ConversationRepository persists conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	FindByID(ctx context.Context, id string) (*Conversation, error)
	FindByFilter(ctx context.Context, filter ConversationFilter, pagination *Pagination) ([]*Conversation, error)
	Count(ctx context.Context, filter ConversationFilter) (int64, error)
	UpdateTitle(ctx context.Context, id string, title string) error
	Touch(ctx context.Context, id string, at time.Time) error
	// Delete removes the conversation and its messages.
	Delete(ctx context.Context, id string) error
}
