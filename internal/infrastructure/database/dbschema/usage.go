package dbschema

import (
	"time"

	"persona-chat/internal/domain/usage"
)

// MessageUsageLog is one counted user message. Conversation and message references are nulled, not
// cascaded, when those rows go away.
type MessageUsageLog struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	UserID         string    `gorm:"type:varchar(255);not null;index:idx_message_usage_logs_user_created"`
	ConversationID *string   `gorm:"type:uuid"`
	MessageID      *string   `gorm:"type:uuid"`
	CreatedAt      time.Time `gorm:"not null;index:idx_message_usage_logs_user_created"`
}

func NewSchemaMessageUsageLog(e *usage.Entry) *MessageUsageLog {
	row := &MessageUsageLog{
		ID:        e.ID,
		UserID:    e.UserID,
		CreatedAt: e.CreatedAt,
	}
	if e.ConversationID != "" {
		row.ConversationID = &e.ConversationID
	}
	if e.MessageID != "" {
		row.MessageID = &e.MessageID
	}
	return row
}
