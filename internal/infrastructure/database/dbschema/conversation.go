package dbschema

import (
	"time"

	"persona-chat/internal/domain/conversation"
)

// Conversation represents the database schema for conversations
type Conversation struct {
	BaseModel
	UserID        string  `gorm:"type:varchar(255);not null;index:idx_conversations_user_updated"`
	CharacterSlug string  `gorm:"type:varchar(64);not null"`
	Title         *string `gorm:"type:varchar(100)"`

	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

// Message represents one stored chat message. Messages are never updated.
type Message struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	ConversationID string    `gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	Role           string    `gorm:"type:varchar(20);not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index:idx_messages_conversation_created"`
}

func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		UserID:        c.UserID,
		CharacterSlug: c.CharacterSlug,
		Title:         c.Title,
	}
}

func (c *Conversation) EtoD() *conversation.Conversation {
	return &conversation.Conversation{
		ID:            c.ID,
		UserID:        c.UserID,
		CharacterSlug: c.CharacterSlug,
		Title:         c.Title,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func NewSchemaMessage(m *conversation.Message) *Message {
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           string(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func (m *Message) EtoD() *conversation.Message {
	return &conversation.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           conversation.Role(m.Role),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
