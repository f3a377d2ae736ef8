package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"persona-chat/internal/utils/platformerrors"
	"persona-chat/internal/utils/stringutils"
)

// PlaceholderTitle is the title a conversation carries until one is generated: the leading
// characters of its first user message.
func PlaceholderTitle(firstUserText string) string {
	return stringutils.Prefix(strings.TrimSpace(firstUserText), TitleMaxLength)
}

// ConversationService handles business logic for conversations and their messages.
type ConversationService struct {
	repo     ConversationRepository
	messages MessageRepository
	now      func() time.Time
}

// NewConversationService creates a new conversation service
func NewConversationService(repo ConversationRepository, messages MessageRepository) *ConversationService {
	return &ConversationService{
		repo:     repo,
		messages: messages,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ===============================================
// Conversations
// ===============================================

// CreateConversation starts a new conversation titled with the placeholder derived from firstUserText.
func (s *ConversationService) CreateConversation(ctx context.Context, userID, characterSlug, firstUserText string) (*Conversation, error) {
	now := s.now()
	conv := &Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		CharacterSlug: characterSlug,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if title := PlaceholderTitle(firstUserText); title != "" {
		conv.Title = &title
	}

	if err := validateConversation(conv); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "conversation validation failed", err, "0b6f61f2-51c4-4a43-9a3d-0d9e2f7f0a11")
	}
	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create conversation")
	}
	return conv, nil
}

// GetConversationByIDAndUserID loads a conversation the user owns. Malformed ids, missing rows and
// conversations owned by someone else all surface as NOT_FOUND.
func (s *ConversationService) GetConversationByIDAndUserID(ctx context.Context, id, userID string) (*Conversation, error) {
	if err := ValidateConversationID(id); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", err, "5f0cf7a6-1c3e-4b8e-a3f4-7e2b9d1c0a22")
	}

	conv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "conversation not found")
	}
	if conv.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "9a7d3c1e-2b4f-4d6a-8c0e-1f3a5b7d9e33")
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently active first, and the total count.
func (s *ConversationService) ListConversations(ctx context.Context, userID string, characterSlug *string, pagination *Pagination) ([]*Conversation, int64, error) {
	filter := ConversationFilter{UserID: &userID, CharacterSlug: characterSlug}

	conversations, err := s.repo.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list conversations")
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count conversations")
	}
	return conversations, total, nil
}

// RenameConversation replaces the title of a conversation the user owns.
func (s *ConversationService) RenameConversation(ctx context.Context, userID, id, title string) (*Conversation, error) {
	if err := ValidateTitle(title); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "3c5e7a9b-1d2f-4e6a-8b0c-2d4f6a8c0e44").
			WithFields(platformerrors.FieldError{Field: "title", Message: err.Error()})
	}

	conv, err := s.GetConversationByIDAndUserID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(title)
	if err := s.repo.UpdateTitle(ctx, conv.ID, trimmed); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to rename conversation")
	}
	conv.Title = &trimmed
	return conv, nil
}

// DeleteConversation removes a conversation the user owns along with its messages.
func (s *ConversationService) DeleteConversation(ctx context.Context, userID, id string) error {
	conv, err := s.GetConversationByIDAndUserID(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete conversation")
	}
	return nil
}

// ApplyGeneratedTitle stores a model generated title. Ownership was settled when the turn began.
func (s *ConversationService) ApplyGeneratedTitle(ctx context.Context, id, title string) error {
	title = stringutils.CleanGeneratedTitle(title, TitleMaxLength)
	if title == "" {
		return nil
	}
	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store generated title")
	}
	return nil
}

// Touch records activity on the conversation.
func (s *ConversationService) Touch(ctx context.Context, id string) error {
	if err := s.repo.Touch(ctx, id, s.now()); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update conversation activity")
	}
	return nil
}

// ===============================================
// Messages
// ===============================================

// NewMessage builds an unsaved message with a fresh identifier.
func (s *ConversationService) NewMessage(conversationID string, role Role, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      s.now(),
	}
}

// AppendMessage persists a message.
func (s *ConversationService) AppendMessage(ctx context.Context, msg *Message) error {
	if !msg.Role.IsValid() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "invalid message role", nil, "7b9d1f3a-5c7e-4a0b-9d2f-4a6c8e0b2d55")
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist message")
	}
	return nil
}

// AppendMessageOnce persists msg unless a message with the same ID already exists.
func (s *ConversationService) AppendMessageOnce(ctx context.Context, msg *Message) (bool, error) {
	created, err := s.messages.CreateIfAbsent(ctx, msg)
	if err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to persist message")
	}
	return created, nil
}

// GetMessages returns the conversation's messages in creation order.
func (s *ConversationService) GetMessages(ctx context.Context, conv *Conversation) ([]*Message, error) {
	messages, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load messages")
	}
	return messages, nil
}

func (s *ConversationService) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	count, err := s.messages.CountByConversation(ctx, conversationID)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to count messages")
	}
	return count, nil
}

// FirstUserMessage returns the earliest user message of the conversation.
func (s *ConversationService) FirstUserMessage(ctx context.Context, conversationID string) (*Message, error) {
	msg, err := s.messages.FirstByRole(ctx, conversationID, RoleUser)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load first user message")
	}
	return msg, nil
}
