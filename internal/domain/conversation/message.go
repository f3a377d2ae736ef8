package conversation

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// IsValid reports whether r is a role the chat protocol accepts.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one persisted turn half. Content is stored as plain text.
type Message struct {
	ID             string
	ConversationID string
	Role           Role
	Content        string
	CreatedAt      time.Time
}

// MessageRepository persists messages. Messages are append-only.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// CreateIfAbsent inserts message unless a row with the same ID exists. It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, message *Message) (bool, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	FirstByRole(ctx context.Context, conversationID string, role Role) (*Message, error)
}
