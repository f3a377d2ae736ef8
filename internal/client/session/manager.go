package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"persona-chat/internal/utils/platformerrors"
)

const (
	// DefaultInvalidateDelay leaves room for the background title write before the second refresh.
	DefaultInvalidateDelay = 2 * time.Second

	QuotaExhaustedMessage = "You've reached today's message limit. Upgrade your plan to keep chatting, or come back after midnight UTC."
	GenericErrorMessage   = "Sorry, something went wrong while I was answering. Please try sending your message again."
)

// Hooks let the embedding UI react to session events. All hooks are optional and are called without
// the manager's lock held.
type Hooks struct {
	// OnConversationID fires once when a new conversation learns its server assigned id.
	OnConversationID func(id string)
	// Invalidate asks the UI to refresh its cached conversation list.
	Invalidate func()
	OnDelta    func(delta string)
	OnError    func(err error)
}

type Options struct {
	CharacterSlug string
	// ConversationID is read at every send. Nil starts a new conversation.
	ConversationID *ConversationIDHolder
	// Model is read at every send; an empty result lets the server pick its default.
	Model           func() string
	History         []Message
	Hooks           Hooks
	InvalidateDelay time.Duration
	Logger          zerolog.Logger
}

// Manager owns the live transcript of one conversation and runs at most one turn at a time.
type Manager struct {
	transport Transport
	opts      Options
	log       zerolog.Logger

	mu       sync.Mutex
	messages []Message
	status   Status
	lastErr  error
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewManager(transport Transport, opts Options) *Manager {
	if opts.ConversationID == nil {
		opts.ConversationID = NewConversationIDHolder("")
	}
	if opts.Model == nil {
		opts.Model = func() string { return "" }
	}
	if opts.InvalidateDelay <= 0 {
		opts.InvalidateDelay = DefaultInvalidateDelay
	}
	done := make(chan struct{})
	close(done)
	return &Manager{
		transport: transport,
		opts:      opts,
		log:       opts.Logger.With().Str("component", "chat-session").Logger(),
		messages:  cloneMessages(opts.History),
		status:    StatusReady,
		done:      done,
	}
}

// SendMessage appends text as a user message and starts a turn. Blank input and sends while a turn is
// in flight are ignored; the return value reports whether a turn started.
func (m *Manager) SendMessage(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	m.mu.Lock()
	if !m.setStatus(StatusSubmitted) {
		m.mu.Unlock()
		return false
	}
	m.messages = append(m.messages, textMessage(uuid.NewString(), RoleUser, text))
	m.lastErr = nil

	req := TurnRequest{
		Messages:       outgoing(m.messages),
		CharacterSlug:  m.opts.CharacterSlug,
		ConversationID: m.opts.ConversationID.Get(),
		Model:          m.opts.Model(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go m.run(ctx, cancel, req, done)
	return true
}

func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, req TurnRequest, done chan struct{}) {
	defer close(done)
	defer cancel()
	defer m.invalidate()

	assistantID := uuid.NewString()
	onStart := func(conversationID string) {
		if m.opts.ConversationID.SetIfEmpty(conversationID) && m.opts.Hooks.OnConversationID != nil {
			m.opts.Hooks.OnConversationID(conversationID)
		}
	}
	onDelta := func(delta string) error {
		m.mu.Lock()
		if m.status == StatusSubmitted {
			m.setStatus(StatusStreaming)
			m.messages = append(m.messages, textMessage(assistantID, RoleAssistant, ""))
		}
		last := &m.messages[len(m.messages)-1]
		last.Parts[0].Text += delta
		m.mu.Unlock()

		if m.opts.Hooks.OnDelta != nil {
			m.opts.Hooks.OnDelta(delta)
		}
		return nil
	}

	err := m.transport.StreamTurn(ctx, req, onStart, onDelta)

	m.mu.Lock()
	m.cancel = nil
	switch {
	case err == nil:
		m.setStatus(StatusReady)
	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		// stopped by the user: partial text stays, nothing was saved server side
		m.setStatus(StatusReady)
		err = nil
	default:
		m.setStatus(StatusError)
		m.lastErr = err
		if last := &m.messages[len(m.messages)-1]; last.ID == assistantID {
			last.Failed = true
		}
		m.messages = append(m.messages, Message{
			ID:     uuid.NewString(),
			Role:   RoleAssistant,
			Parts:  []Part{{Type: PartTypeError, Text: errorText(err)}},
			Failed: true,
		})
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("chat turn failed")
		if m.opts.Hooks.OnError != nil {
			m.opts.Hooks.OnError(err)
		}
	}
}

func errorText(err error) string {
	if IsQuotaExhausted(err) {
		return QuotaExhaustedMessage
	}
	return GenericErrorMessage
}

// IsQuotaExhausted tells a spent daily quota apart from the transport level request limiter, which
// carries no daily limit.
func IsQuotaExhausted(err error) bool {
	var perr *platformerrors.PlatformError
	if !errors.As(err, &perr) || perr.Type != platformerrors.ErrorTypeRateLimited {
		return false
	}
	_, ok := perr.Context["daily_limit"]
	return ok
}

func (m *Manager) invalidate() {
	invalidate := m.opts.Hooks.Invalidate
	if invalidate == nil {
		return
	}
	invalidate()
	time.AfterFunc(m.opts.InvalidateDelay, invalidate)
}

// setStatus must be called with mu held.
func (m *Manager) setStatus(to Status) bool {
	if !CanTransition(m.status, to) {
		return false
	}
	m.status = to
	return true
}

// Stop aborts the in-flight turn. Text already streamed stays in the transcript.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the current turn, if any, has finished.
func (m *Manager) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	<-done
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Err returns the failure of the last turn, nil when it succeeded or was stopped.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMessages(m.messages)
}

func (m *Manager) ConversationID() string {
	return m.opts.ConversationID.Get()
}
