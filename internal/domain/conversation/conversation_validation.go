package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateConversationID checks that id has the shape of a conversation identifier.
func ValidateConversationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("conversation ID must be a UUID: %w", err)
	}
	return nil
}

// ValidateTitle checks a user supplied rename.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > TitleMaxLength {
		return fmt.Errorf("title cannot exceed %d characters", TitleMaxLength)
	}
	return nil
}

func validateConversation(conv *Conversation) error {
	if conv == nil {
		return fmt.Errorf("conversation cannot be nil")
	}
	if conv.UserID == "" {
		return fmt.Errorf("conversation must belong to a user")
	}
	if conv.CharacterSlug == "" {
		return fmt.Errorf("conversation must reference a character")
	}
	if conv.Title != nil && utf8.RuneCountInString(*conv.Title) > TitleMaxLength {
		return fmt.Errorf("title cannot exceed %d characters", TitleMaxLength)
	}
	return nil
}
