package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/client/session"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestChatCommandStreamsAnswer(t *testing.T) {
	var mu sync.Mutex
	var turns []session.TurnRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat", r.URL.Path)
		var req session.TurnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		turns = append(turns, req)
		mu.Unlock()
		w.Header().Set("X-Conversation-Id", "conv-1")
		_, _ = io.WriteString(w, "Hi, I am Luna.")
	}))
	defer server.Close()

	out, err := execute(t, "hello\n\nhow are you?\n", "chat", "--character", "luna", "--api-url", server.URL, "--token", "t")

	require.NoError(t, err)
	assert.Contains(t, out, "luna: Hi, I am Luna.")
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, turns, 2)
	assert.Equal(t, "luna", turns[0].CharacterSlug)
	assert.Equal(t, "conv-1", turns[1].ConversationID)
	assert.Len(t, turns[1].Messages, 3)
}

func TestChatCommandShowsQuotaMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"Daily message limit reached","message_count":15,"daily_limit":15,"remaining":0}`)
	}))
	defer server.Close()

	out, err := execute(t, "hello\n", "chat", "--character", "nova", "--api-url", server.URL, "--token", "t")

	require.NoError(t, err)
	assert.Contains(t, out, session.QuotaExhaustedMessage)
}

func TestCommandsRequireToken(t *testing.T) {
	t.Setenv("PERSONA_API_TOKEN", "")
	_, err := execute(t, "", "characters", "--token", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}

func TestTokenCommand(t *testing.T) {
	out, err := execute(t, "", "token", "--secret", "dev-secret", "--subject", "user-1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	t.Setenv("AUTH_JWT_SECRET", "")
	_, err = execute(t, "", "token", "--secret", "", "--subject", "user-1")
	assert.Error(t, err)
}
