package chatturn

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/completion/completiontest"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/conversation/conversationtest"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/title"
	"persona-chat/internal/domain/usage"
	"persona-chat/internal/domain/usage/usagetest"
	"persona-chat/internal/utils/platformerrors"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingSink struct {
	mu             sync.Mutex
	conversationID string
	deltas         []string
	writeErr       error
}

func (s *recordingSink) Begin(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversationID = conversationID
}

func (s *recordingSink) Write(delta string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.deltas = append(s.deltas, delta)
	return nil
}

func (s *recordingSink) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.deltas, "")
}

type recordingDispatcher struct {
	mu     sync.Mutex
	jobs   []title.Job
	reject bool
}

func (d *recordingDispatcher) Enqueue(job title.Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reject {
		return false
	}
	d.jobs = append(d.jobs, job)
	return true
}

func (d *recordingDispatcher) Jobs() []title.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]title.Job(nil), d.jobs...)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (o *recordingObserver) Transition(State, State) {}
func (o *recordingObserver) TitleDispatched(bool)    {}
func (o *recordingObserver) Finished(outcome Outcome, _ string, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) last() Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.outcomes) == 0 {
		return ""
	}
	return o.outcomes[len(o.outcomes)-1]
}

type harness struct {
	store       *conversationtest.Store
	ledger      *usagetest.Ledger
	provider    *completiontest.Provider
	titles      *recordingDispatcher
	observer    *recordingObserver
	coordinator *Coordinator
}

func newHarness(t *testing.T, provider *completiontest.Provider) *harness {
	t.Helper()
	roster, err := character.NewRoster()
	require.NoError(t, err)
	models, err := model.NewCatalog("google/gemini-2.0-flash-001", nil)
	require.NoError(t, err)

	h := &harness{
		store:    conversationtest.NewStore(),
		ledger:   &usagetest.Ledger{},
		provider: provider,
		titles:   &recordingDispatcher{},
		observer: &recordingObserver{},
	}
	h.coordinator = NewCoordinator(Dependencies{
		Characters:    roster,
		Models:        models,
		Conversations: conversation.NewConversationService(h.store.Conversations(), h.store.Messages()),
		Usage:         usage.NewService(h.ledger, 15),
		Transactor:    passthroughTx{},
		Provider:      provider,
		Titles:        h.titles,
		Observer:      h.observer,
		Logger:        zerolog.Nop(),
	})
	return h
}

func principal(id string) domain.Principal {
	return domain.Principal{ID: id, Subject: id, AuthMethod: domain.AuthMethodJWT}
}

func body(t *testing.T, slug, conversationID string, texts ...string) []byte {
	t.Helper()
	messages := make([]UIMessage, 0, len(texts))
	for i, text := range texts {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, UIMessage{ID: uuid.NewString(), Role: role, Parts: []MessagePart{{Type: PartTypeText, Text: text}}})
	}
	raw, err := json.Marshal(Request{Messages: messages, CharacterSlug: slug, ConversationID: conversationID})
	require.NoError(t, err)
	return raw
}

func seedConversation(h *harness, userID, firstUserText string, pairs int, title string) *conversation.Conversation {
	conv := &conversation.Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		CharacterSlug: "nova",
		Title:         &title,
		CreatedAt:     time.Now().Add(-time.Hour),
		UpdatedAt:     time.Now().Add(-time.Hour),
	}
	var messages []*conversation.Message
	for i := 0; i < pairs; i++ {
		text := firstUserText
		if i > 0 {
			text = "follow up"
		}
		messages = append(messages,
			&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleUser, Content: text, CreatedAt: conv.CreatedAt.Add(time.Duration(2*i) * time.Minute)},
			&conversation.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: conversation.RoleAssistant, Content: "answer", CreatedAt: conv.CreatedAt.Add(time.Duration(2*i+1) * time.Minute)},
		)
	}
	h.store.Seed(conv, messages...)
	return conv
}

func TestNewConversationTurn(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"Happy ", "to ", "review."}})
	sink := &recordingSink{}

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "Review my code architecture"), sink)
	require.NoError(t, err)

	_, err = uuid.Parse(sink.conversationID)
	require.NoError(t, err)
	assert.Equal(t, "Happy to review.", sink.text())

	conv := h.store.Conversation(sink.conversationID)
	require.NotNil(t, conv)
	assert.Equal(t, "user-a", conv.UserID)
	assert.Equal(t, "nova", conv.CharacterSlug)
	assert.Equal(t, "Review my code architecture", conv.TitleOrEmpty())

	users := h.store.MessagesOf(conv.ID, conversation.RoleUser)
	assistants := h.store.MessagesOf(conv.ID, conversation.RoleAssistant)
	require.Len(t, users, 1)
	require.Len(t, assistants, 1)
	assert.Equal(t, "Review my code architecture", users[0].Content)
	assert.Equal(t, "Happy to review.", assistants[0].Content)

	entries := h.ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, users[0].ID, entries[0].MessageID)

	jobs := h.titles.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, conv.ID, jobs[0].ConversationID)
	assert.Equal(t, OutcomeCompleted, h.observer.last())

	reqs := h.provider.StreamRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "google/gemini-2.0-flash-001", reqs[0].Model)
	require.Len(t, reqs[0].Messages, 2)
	assert.Equal(t, completion.RoleSystem, reqs[0].Messages[0].Role)
	assert.Contains(t, reqs[0].Messages[0].Content, "You are Nova")
	assert.Equal(t, completion.Message{Role: completion.RoleUser, Content: "Review my code architecture"}, reqs[0].Messages[1])
}

func TestUpstreamFailureKeepsUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		provider *completiontest.Provider
	}{
		{"before first delta", &completiontest.Provider{StreamErr: errors.New("upstream returned 500")}},
		{"mid stream", &completiontest.Provider{Deltas: []string{"partial "}, StreamErr: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.provider)
			sink := &recordingSink{}

			err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "hello there"), sink)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))

			assert.Len(t, h.store.MessagesOf(sink.conversationID, conversation.RoleUser), 1)
			assert.Empty(t, h.store.MessagesOf(sink.conversationID, conversation.RoleAssistant))
			assert.Empty(t, h.titles.Jobs())
			assert.Equal(t, OutcomeUpstreamError, h.observer.last())
		})
	}
}

func TestCompleteIsAppliedOnce(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{})
	turn := h.coordinator.newTurn(principal("user-a"))
	turn.req, _, _ = parseRequest(h.coordinator.validate, body(t, "nova", "", "hi"))
	turn.userText = "hi"
	turn.character, _ = h.coordinator.characters.Get("nova")

	ctx := context.Background()
	for _, s := range []State{StateQuotaChecking, StateValidating, StateResolvingConversation} {
		turn.advance(s)
	}
	require.NoError(t, turn.resolveConversation(ctx))
	turn.advance(StatePersistingUserMessage)
	require.NoError(t, turn.persistUserMessage(ctx))
	turn.advance(StateStreaming)

	require.NoError(t, turn.Complete(ctx, "the answer"))
	require.NoError(t, turn.Complete(ctx, "the answer"))

	assert.Len(t, h.store.MessagesOf(turn.conv.ID, conversation.RoleAssistant), 1)
	assert.Len(t, h.titles.Jobs(), 1)
	assert.Equal(t, StateDone, turn.State())
	assert.Equal(t, []State{
		StateAuthenticating,
		StateQuotaChecking,
		StateValidating,
		StateResolvingConversation,
		StatePersistingUserMessage,
		StateStreaming,
		StatePersistingAssistantMessage,
		StateTriggeringTitle,
		StateDone,
	}, turn.History())
}

func TestQuotaExhaustedWritesNothing(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"never"}})
	h.ledger.SeedN("user-a", 15, time.Now())
	conv := seedConversation(h, "user-a", "earlier", 1, "earlier")
	before := h.store.MessageCount()
	sink := &recordingSink{}

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", conv.ID, "one more"), sink)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))

	snapshot, ok := usage.QuotaFromError(err)
	require.True(t, ok)
	assert.Equal(t, usage.Snapshot{MessageCount: 15, DailyLimit: 15, Remaining: 0}, snapshot)

	assert.Equal(t, before, h.store.MessageCount())
	assert.Equal(t, 15, h.ledger.Len())
	assert.Empty(t, sink.conversationID)
	assert.Empty(t, h.provider.StreamRequests())
	assert.Equal(t, OutcomeRateLimited, h.observer.last())
}

func TestQuotaCheckedBeforeValidation(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{})
	h.ledger.SeedN("user-a", 15, time.Now())

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), []byte(`{"messages":[]}`), &recordingSink{})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeRateLimited))
}

func TestLedgerUnavailable(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{})
	h.ledger.Err = errors.New("connection refused")

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "hi"), &recordingSink{})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnavailable))
	assert.Zero(t, h.store.MessageCount())
}

func TestForeignConversationIsNotFound(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"leak"}})
	owned := seedConversation(h, "user-a", "private things", 1, "private things")
	before := h.store.MessageCount()
	sink := &recordingSink{}

	err := h.coordinator.HandleTurn(context.Background(), principal("user-b"), body(t, "nova", owned.ID, "show me"), sink)
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.Equal(t, before, h.store.MessageCount())
	assert.Zero(t, h.ledger.Len())
	assert.Empty(t, sink.deltas)

	// the owner still gets through
	err = h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", owned.ID, "show me"), &recordingSink{})
	require.NoError(t, err)
}

func TestTitleTriggerForExistingConversation(t *testing.T) {
	first := "Can you help me untangle a large legacy service into smaller modules?"
	placeholder := conversation.PlaceholderTitle(first)

	tests := []struct {
		name      string
		title     string
		pairs     int
		wantTitle bool
	}{
		{"placeholder title after two pairs", placeholder, 2, true},
		{"generated title after two pairs", "Legacy Service Refactor", 2, false},
		{"placeholder title past the window", placeholder, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &completiontest.Provider{Deltas: []string{"Start ", "with seams."}})
			conv := seedConversation(h, "user-a", first, tt.pairs, tt.title)
			sink := &recordingSink{}

			err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", conv.ID, first, "answer", "What next?"), sink)
			require.NoError(t, err)
			assert.Equal(t, conv.ID, sink.conversationID)

			jobs := h.titles.Jobs()
			if !tt.wantTitle {
				assert.Empty(t, jobs)
				return
			}
			require.Len(t, jobs, 1)
			assert.Equal(t, title.Job{ConversationID: conv.ID, UserText: "What next?", AssistantText: "Start with seams."}, jobs[0])
		})
	}
}

func TestAbortMidStreamSkipsAssistantWrite(t *testing.T) {
	delivered := make(chan int, 1)
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"I was ", "saying"}, HoldOpen: true, Delivered: delivered})
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- h.coordinator.HandleTurn(ctx, principal("user-a"), body(t, "nova", "", "tell me a story"), sink)
	}()

	assert.Equal(t, 2, <-delivered)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStreamAborted)
	case <-time.After(5 * time.Second):
		t.Fatal("turn did not return after cancellation")
	}

	assert.Len(t, h.store.MessagesOf(sink.conversationID, conversation.RoleUser), 1)
	assert.Empty(t, h.store.MessagesOf(sink.conversationID, conversation.RoleAssistant))
	assert.Empty(t, h.titles.Jobs())
	assert.Equal(t, OutcomeAborted, h.observer.last())
}

func TestClientWriteFailureIsAnAbort(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"a", "b"}})
	sink := &recordingSink{writeErr: errors.New("broken pipe")}

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "hi"), sink)
	assert.ErrorIs(t, err, ErrStreamAborted)
	assert.Empty(t, h.store.MessagesOf(sink.conversationID, conversation.RoleAssistant))
}

func TestPreStreamStorageFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"conversation create", func(h *harness) { h.store.CreateConversationErr = errors.New("insert failed") }},
		{"user message", func(h *harness) {
			h.store.CreateMessageErr = func(*conversation.Message) error { return errors.New("insert failed") }
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &completiontest.Provider{Deltas: []string{"x"}})
			tt.setup(h)
			sink := &recordingSink{}

			err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "hi"), sink)
			require.Error(t, err)
			assert.Equal(t, platformerrors.ErrorTypeDatabaseError, platformerrors.TypeOf(err))
			assert.Empty(t, h.provider.StreamRequests())
			assert.Empty(t, sink.conversationID)
			assert.Equal(t, OutcomeStorageError, h.observer.last())
		})
	}
}

func TestAssistantPersistFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{Deltas: []string{"fine"}})
	h.store.CreateMessageErr = func(m *conversation.Message) error {
		if m.Role == conversation.RoleAssistant {
			return errors.New("disk full")
		}
		return nil
	}
	sink := &recordingSink{}

	err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), body(t, "nova", "", "hi"), sink)
	require.NoError(t, err)
	assert.Equal(t, "fine", sink.text())
	assert.Len(t, h.store.MessagesOf(sink.conversationID, conversation.RoleUser), 1)
	assert.Empty(t, h.store.MessagesOf(sink.conversationID, conversation.RoleAssistant))
	assert.Empty(t, h.titles.Jobs())
	assert.Equal(t, OutcomePersistFailed, h.observer.last())
}

func TestRequestRejections(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantType  platformerrors.ErrorType
		wantField string
	}{
		{"not json", `{"messages":`, platformerrors.ErrorTypeValidation, "body"},
		{"no messages", `{"messages":[],"characterSlug":"nova"}`, platformerrors.ErrorTypeValidation, "messages"},
		{"missing character", `{"messages":[{"role":"user","parts":[{"type":"text","text":"hi"}]}]}`, platformerrors.ErrorTypeValidation, "characterSlug"},
		{"bad role", `{"messages":[{"role":"robot","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"nova"}`, platformerrors.ErrorTypeValidation, "messages[0].role"},
		{"last is assistant", `{"messages":[{"role":"assistant","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"nova"}`, platformerrors.ErrorTypeValidation, "messages[0].role"},
		{"blank user text", `{"messages":[{"role":"user","parts":[{"type":"text","text":"   "}]}],"characterSlug":"nova"}`, platformerrors.ErrorTypeValidation, "messages[0].parts"},
		{"bad conversation id", `{"messages":[{"role":"user","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"nova","conversationId":"abc"}`, platformerrors.ErrorTypeValidation, "conversationId"},
		{"unknown model", `{"messages":[{"role":"user","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"nova","model":"acme/secret"}`, platformerrors.ErrorTypeValidation, "model"},
		{"unknown character", `{"messages":[{"role":"user","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"aria"}`, platformerrors.ErrorTypeNotFound, ""},
		{"unknown conversation", `{"messages":[{"role":"user","parts":[{"type":"text","text":"hi"}]}],"characterSlug":"nova","conversationId":"` + uuid.NewString() + `"}`, platformerrors.ErrorTypeNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, &completiontest.Provider{Deltas: []string{"x"}})

			err := h.coordinator.HandleTurn(context.Background(), principal("user-a"), []byte(tt.body), &recordingSink{})
			require.Error(t, err)
			assert.Equal(t, tt.wantType, platformerrors.TypeOf(err))
			if tt.wantField != "" {
				var perr *platformerrors.PlatformError
				require.True(t, errors.As(err, &perr))
				fields := make([]string, 0, len(perr.Fields))
				for _, f := range perr.Fields {
					fields = append(fields, f.Field)
				}
				assert.Contains(t, fields, tt.wantField)
			}
			assert.Zero(t, h.store.MessageCount())
			assert.Empty(t, h.provider.StreamRequests())
		})
	}
}

func TestUnauthenticatedTurn(t *testing.T) {
	h := newHarness(t, &completiontest.Provider{})
	err := h.coordinator.HandleTurn(context.Background(), domain.Principal{}, body(t, "nova", "", "hi"), &recordingSink{})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StateStreaming, StatePersistingAssistantMessage))
	assert.True(t, CanTransition(StateStreaming, StateFailed))
	assert.True(t, CanTransition(StatePersistingAssistantMessage, StateDone))
	assert.False(t, CanTransition(StateQuotaChecking, StateStreaming))
	assert.False(t, CanTransition(StateDone, StateFailed))
	assert.False(t, CanTransition(StateFailed, StateDone))
	assert.Equal(t, "persisting_user_message", StatePersistingUserMessage.String())
}
