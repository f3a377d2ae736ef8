package conversation_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/conversation/conversationtest"
	"persona-chat/internal/utils/platformerrors"
)

func newService() (*conversation.ConversationService, *conversationtest.Store) {
	store := conversationtest.NewStore()
	return conversation.NewConversationService(store.Conversations(), store.Messages()), store
}

func TestCreateConversationUsesPlaceholderTitle(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()

	text := "  " + strings.Repeat("é", 60) + "  "
	conv, err := svc.CreateConversation(ctx, "user-1", "nova", text)
	require.NoError(t, err)

	_, err = uuid.Parse(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, conv.Title)
	assert.Equal(t, strings.Repeat("é", 50), *conv.Title)
	assert.Equal(t, conversation.PlaceholderTitle(text), conv.TitleOrEmpty())
	assert.NotNil(t, store.Conversation(conv.ID))
}

func TestGetConversationByIDAndUserIDIsOpaque(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	owned := &conversation.Conversation{ID: uuid.NewString(), UserID: "owner", CharacterSlug: "nova"}
	store.Seed(owned)

	tests := []struct {
		name   string
		id     string
		userID string
	}{
		{"malformed id", "not-a-uuid", "owner"},
		{"missing", uuid.NewString(), "owner"},
		{"other user", owned.ID, "intruder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetConversationByIDAndUserID(ctx, tt.id, tt.userID)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
		})
	}

	got, err := svc.GetConversationByIDAndUserID(ctx, owned.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, owned.ID, got.ID)
}

func TestRenameConversation(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	conv := &conversation.Conversation{ID: uuid.NewString(), UserID: "u", CharacterSlug: "nova"}
	store.Seed(conv)

	_, err := svc.RenameConversation(ctx, "u", conv.ID, "   ")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.RenameConversation(ctx, "u", conv.ID, strings.Repeat("x", 51))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	renamed, err := svc.RenameConversation(ctx, "u", conv.ID, "  Weekend plans ")
	require.NoError(t, err)
	assert.Equal(t, "Weekend plans", renamed.TitleOrEmpty())
	assert.Equal(t, "Weekend plans", store.Conversation(conv.ID).TitleOrEmpty())
}

func TestDeleteConversationRemovesMessages(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	conv := &conversation.Conversation{ID: uuid.NewString(), UserID: "u", CharacterSlug: "nova"}
	store.Seed(conv,
		&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleUser, Content: "hi"},
		&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleAssistant, Content: "hello"},
	)

	err := svc.DeleteConversation(ctx, "someone-else", conv.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	require.NoError(t, svc.DeleteConversation(ctx, "u", conv.ID))
	assert.Nil(t, store.Conversation(conv.ID))
	assert.Zero(t, store.MessageCount())
}

func TestListConversationsNewestFirst(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, slug := range []string{"nova", "sage", "nova"} {
		store.Seed(&conversation.Conversation{ID: uuid.NewString(), UserID: "u", CharacterSlug: slug, UpdatedAt: base.Add(time.Duration(i) * time.Hour)})
	}
	store.Seed(&conversation.Conversation{ID: uuid.NewString(), UserID: "other", CharacterSlug: "nova"})

	all, total, err := svc.ListConversations(ctx, "u", nil, &conversation.Pagination{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, all, 2)
	assert.True(t, all[0].UpdatedAt.After(all[1].UpdatedAt))

	slug := "nova"
	novas, total, err := svc.ListConversations(ctx, "u", &slug, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, novas, 2)
}

func TestAppendMessageOnceIsIdempotent(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	msg := svc.NewMessage(uuid.NewString(), conversation.RoleAssistant, "done")

	created, err := svc.AppendMessageOnce(ctx, msg)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.AppendMessageOnce(ctx, msg)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, store.MessageCount())
}

func TestApplyGeneratedTitleCleansOutput(t *testing.T) {
	svc, store := newService()
	ctx := context.Background()
	conv := &conversation.Conversation{ID: uuid.NewString(), UserID: "u", CharacterSlug: "nova"}
	store.Seed(conv)

	require.NoError(t, svc.ApplyGeneratedTitle(ctx, conv.ID, "  \"Code   Architecture Review\"\n"))
	assert.Equal(t, "Code Architecture Review", store.Conversation(conv.ID).TitleOrEmpty())

	require.NoError(t, svc.ApplyGeneratedTitle(ctx, conv.ID, "  \"\" "))
	assert.Equal(t, "Code Architecture Review", store.Conversation(conv.ID).TitleOrEmpty())
}
