package conversationhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/conversation/conversationtest"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses/conversationres"
)

func setupRouter(store *conversationtest.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewConversationHandler(conversation.NewConversationService(store.Conversations(), store.Messages()))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			middleware.SetPrincipal(c, domain.Principal{ID: user, AuthMethod: domain.AuthMethodJWT})
		}
		c.Next()
	})
	router.GET("/v1/conversations", handler.ListConversations)
	router.GET("/v1/conversations/:conversation_id", handler.GetConversation)
	router.PATCH("/v1/conversations/:conversation_id", handler.UpdateConversation)
	router.DELETE("/v1/conversations/:conversation_id", handler.DeleteConversation)
	return router
}

func seed(store *conversationtest.Store, userID, slug, title string, updatedAt time.Time) *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		CharacterSlug: slug,
		Title:         &title,
		CreatedAt:     updatedAt.Add(-time.Minute),
		UpdatedAt:     updatedAt,
	}
	store.Seed(conv,
		&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleUser, Content: "hi", CreatedAt: conv.CreatedAt},
		&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleAssistant, Content: "hello", CreatedAt: conv.CreatedAt.Add(time.Second)},
	)
	return conv
}

func do(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListConversations(t *testing.T) {
	store := conversationtest.NewStore()
	now := time.Now().UTC()
	older := seed(store, "user-a", "nova", "older", now.Add(-time.Hour))
	newer := seed(store, "user-a", "sage", "newer", now)
	seed(store, "user-b", "nova", "not mine", now)
	router := setupRouter(store)

	t.Run("own conversations by last activity", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/conversations", "user-a", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp conversationres.ConversationListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		assert.Equal(t, newer.ID, resp.Data[0].ID)
		assert.Equal(t, older.ID, resp.Data[1].ID)
		assert.EqualValues(t, 2, resp.Total)
	})

	t.Run("character filter", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/conversations?character=nova", "user-a", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp conversationres.ConversationListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, older.ID, resp.Data[0].ID)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/conversations?limit=-1", "user-a", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/conversations", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestConversationOwnership(t *testing.T) {
	store := conversationtest.NewStore()
	theirs := seed(store, "user-b", "nova", "private", time.Now())
	router := setupRouter(store)
	path := "/v1/conversations/" + theirs.ID

	tests := []struct {
		name   string
		method string
		body   string
	}{
		{name: "get", method: http.MethodGet},
		{name: "rename", method: http.MethodPatch, body: `{"title":"mine now"}`},
		{name: "delete", method: http.MethodDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, path, "user-a", tt.body)
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}

	assert.Equal(t, "private", store.Conversation(theirs.ID).TitleOrEmpty())
	assert.Equal(t, 1, store.ConversationCount())
}

func TestGetConversationWithMessages(t *testing.T) {
	store := conversationtest.NewStore()
	conv := seed(store, "user-a", "nova", "chat", time.Now())
	router := setupRouter(store)

	w := do(router, http.MethodGet, "/v1/conversations/"+conv.ID, "user-a", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp conversationres.ConversationDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, conv.ID, resp.ID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "assistant", resp.Messages[1].Role)
}

func TestUpdateConversation(t *testing.T) {
	store := conversationtest.NewStore()
	conv := seed(store, "user-a", "nova", "chat", time.Now())
	router := setupRouter(store)
	path := "/v1/conversations/" + conv.ID

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTitle  string
	}{
		{name: "trimmed", body: `{"title":"  Weekly plan  "}`, wantStatus: http.StatusOK, wantTitle: "Weekly plan"},
		{name: "blank", body: `{"title":"   "}`, wantStatus: http.StatusBadRequest, wantTitle: "Weekly plan"},
		{name: "too long", body: `{"title":"` + strings.Repeat("x", 51) + `"}`, wantStatus: http.StatusBadRequest, wantTitle: "Weekly plan"},
		{name: "missing", body: `{}`, wantStatus: http.StatusBadRequest, wantTitle: "Weekly plan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPatch, path, "user-a", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantTitle, store.Conversation(conv.ID).TitleOrEmpty())
		})
	}
}

func TestDeleteConversation(t *testing.T) {
	store := conversationtest.NewStore()
	conv := seed(store, "user-a", "nova", "chat", time.Now())
	router := setupRouter(store)

	w := do(router, http.MethodDelete, "/v1/conversations/"+conv.ID, "user-a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, store.ConversationCount())
	assert.Zero(t, store.MessageCount())

	w = do(router, http.MethodDelete, "/v1/conversations/"+conv.ID, "user-a", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
