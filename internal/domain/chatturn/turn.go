package chatturn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/title"
	"persona-chat/internal/utils/platformerrors"
)

// ErrStreamAborted is returned when the client went away or the request context ended mid-stream.
var ErrStreamAborted = errors.New("chat stream aborted")

type sinkError struct{ err error }

func (e *sinkError) Error() string { return "write to client: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

// Turn carries the state of one request/response exchange.
type Turn struct {
	c         *Coordinator
	principal domain.Principal
	startedAt time.Time

	mu      sync.Mutex
	state   State
	history []State
	outcome Outcome

	req          Request
	userText     string
	modelID      string
	character    character.Character
	conv         *conversation.Conversation
	isNew        bool
	titleAtStart string

	assistantMessageID string
	completeOnce       sync.Once
	completeErr        error
}

func (c *Coordinator) newTurn(principal domain.Principal) *Turn {
	return &Turn{
		c:                  c,
		principal:          principal,
		startedAt:          time.Now(),
		state:              StateAuthenticating,
		history:            []State{StateAuthenticating},
		assistantMessageID: uuid.NewString(),
	}
}

// State returns the current state.
func (t *Turn) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// History returns every state the turn has entered, in order.
func (t *Turn) History() []State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]State(nil), t.history...)
}

func (t *Turn) advance(next State) {
	t.mu.Lock()
	from := t.state
	if !CanTransition(from, next) {
		t.mu.Unlock()
		t.c.log.Error().Str("from", from.String()).Str("to", next.String()).Msg("illegal chat turn transition")
		return
	}
	t.state = next
	t.history = append(t.history, next)
	t.mu.Unlock()
	t.c.observer.Transition(from, next)
}

func (t *Turn) fail(outcome Outcome, err error) error {
	t.outcome = outcome
	t.advance(StateFailed)
	return err
}

func outcomeFor(err error) Outcome {
	switch platformerrors.TypeOf(err) {
	case platformerrors.ErrorTypeUnauthorized:
		return OutcomeUnauthorized
	case platformerrors.ErrorTypeRateLimited:
		return OutcomeRateLimited
	case platformerrors.ErrorTypeUnavailable:
		return OutcomeUnavailable
	case platformerrors.ErrorTypeValidation:
		return OutcomeInvalid
	case platformerrors.ErrorTypeNotFound:
		return OutcomeNotFound
	default:
		return OutcomeStorageError
	}
}

func (t *Turn) run(ctx context.Context, body []byte, sink Sink) error {
	c := t.c
	log := c.log.With().
		Str("request_id", platformerrors.RequestIDFromContext(ctx)).
		Str("user", c.redactor.UserID(t.principal.ID)).
		Logger()

	if !t.principal.Authenticated() {
		return t.fail(OutcomeUnauthorized, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "authentication required", nil, "1f3b5d7e-9a0c-4e2b-8d4f-6a8c0e2b4d88"))
	}

	t.advance(StateQuotaChecking)
	if _, err := c.usage.Check(ctx, t.principal.ID); err != nil {
		return t.fail(outcomeFor(err), err)
	}

	t.advance(StateValidating)
	req, fields, err := parseRequest(c.validate, body)
	if err == nil {
		modelID, ok := c.models.Resolve(req.Model)
		if !ok {
			fields = append(fields, platformerrors.FieldError{Field: "model", Message: "model is not available"})
			err = errors.New("invalid chat request")
		}
		t.modelID = modelID
	}
	if err != nil {
		perr := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "Invalid request", err, "2a4c6e8a-0b1d-4f3a-9c5e-7b9d1f3a5c99")
		if len(fields) > 0 {
			perr = perr.WithFields(fields...)
		}
		return t.fail(OutcomeInvalid, perr)
	}
	t.req = req
	t.userText = req.LatestUserText()

	t.advance(StateResolvingConversation)
	char, ok := c.characters.Get(req.CharacterSlug)
	if !ok {
		return t.fail(OutcomeNotFound, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "Character not found", nil, "3b5d7f9b-1c2e-4a4b-8d6f-8c0e2a4b6daa"))
	}
	t.character = char

	err = c.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := t.resolveConversation(txCtx); err != nil {
			return err
		}
		t.advance(StatePersistingUserMessage)
		return t.persistUserMessage(txCtx)
	})
	if err != nil {
		perr := platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to prepare chat turn")
		if perr.Type == platformerrors.ErrorTypeInternal {
			perr.Type = platformerrors.ErrorTypeDatabaseError
		}
		log.Warn().Err(err).Str("state", t.State().String()).Msg("chat turn aborted before streaming")
		return t.fail(outcomeFor(perr), perr)
	}

	sink.Begin(t.conv.ID)
	t.advance(StateStreaming)
	log = log.With().Str("conversation_id", t.conv.ID).Str("model", t.modelID).Logger()
	log.Debug().Str("character", char.Slug).Str("text", c.redactor.Text(t.userText)).Msg("streaming chat turn")

	text, err := c.provider.Stream(ctx, t.completionRequest(), func(delta string) error {
		if err := sink.Write(delta); err != nil {
			return &sinkError{err: err}
		}
		return nil
	})
	if err != nil {
		var se *sinkError
		if errors.As(err, &se) || ctx.Err() != nil || errors.Is(err, context.Canceled) {
			log.Info().Err(err).Msg("chat stream aborted, assistant message not saved")
			return t.fail(OutcomeAborted, fmt.Errorf("%w: %w", ErrStreamAborted, err))
		}
		log.Error().Err(err).Msg("upstream completion failed")
		return t.fail(OutcomeUpstreamError, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "Failed to generate response", err, "4c6e8a0c-2d3f-4b5c-9e7a-9d1f3b5c7ebb"))
	}

	// the answer is complete; a client hanging up now must not lose it
	if err := t.Complete(context.WithoutCancel(ctx), text); err != nil {
		log.Error().Err(err).Msg("failed to persist assistant message")
		return nil
	}
	log.Info().
		Int("chars", len(text)).
		Bool("new_conversation", t.isNew).
		Dur("duration", time.Since(t.startedAt)).
		Msg("chat turn completed")
	return nil
}

func (t *Turn) resolveConversation(ctx context.Context) error {
	c := t.c
	if t.req.ConversationID == "" {
		conv, err := c.conversations.CreateConversation(ctx, t.principal.ID, t.character.Slug, t.userText)
		if err != nil {
			return err
		}
		t.conv = conv
		t.isNew = true
	} else {
		conv, err := c.conversations.GetConversationByIDAndUserID(ctx, t.req.ConversationID, t.principal.ID)
		if err != nil {
			return err
		}
		t.conv = conv
	}
	t.titleAtStart = t.conv.TitleOrEmpty()
	return nil
}

func (t *Turn) persistUserMessage(ctx context.Context) error {
	c := t.c
	msg := c.conversations.NewMessage(t.conv.ID, conversation.RoleUser, t.userText)
	if err := c.conversations.AppendMessage(ctx, msg); err != nil {
		return err
	}
	return c.usage.Record(ctx, t.principal.ID, t.conv.ID, msg.ID)
}

func (t *Turn) completionRequest() completion.Request {
	messages := make([]completion.Message, 0, len(t.req.Messages)+1)
	messages = append(messages, completion.Message{Role: completion.RoleSystem, Content: t.character.SystemPrompt})

	last := len(t.req.Messages) - 1
	for i, m := range t.req.Messages {
		role := conversation.Role(m.Role)
		if role != conversation.RoleUser && role != conversation.RoleAssistant {
			continue
		}
		text := m.Text()
		if i == last {
			text = t.userText
		}
		if text == "" {
			continue
		}
		messages = append(messages, completion.Message{Role: completion.Role(role), Content: text})
	}
	return completion.Request{Model: t.modelID, Messages: messages}
}

// Complete persists the assistant answer and schedules title generation. Only the first call has any
// effect; later calls return the first call's result.
func (t *Turn) Complete(ctx context.Context, text string) error {
	t.completeOnce.Do(func() {
		t.completeErr = t.complete(ctx, text)
	})
	return t.completeErr
}

func (t *Turn) complete(ctx context.Context, text string) error {
	c := t.c
	t.advance(StatePersistingAssistantMessage)

	msg := &conversation.Message{
		ID:             t.assistantMessageID,
		ConversationID: t.conv.ID,
		Role:           conversation.RoleAssistant,
		Content:        text,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := c.conversations.AppendMessageOnce(ctx, msg); err != nil {
		t.outcome = OutcomePersistFailed
		t.advance(StateDone)
		return err
	}
	if err := c.conversations.Touch(ctx, t.conv.ID); err != nil {
		c.log.Warn().Err(err).Str("conversation_id", t.conv.ID).Msg("failed to update conversation activity")
	}

	t.advance(StateTriggeringTitle)
	t.triggerTitle(ctx, text)
	t.outcome = OutcomeCompleted
	t.advance(StateDone)
	return nil
}

func (t *Turn) triggerTitle(ctx context.Context, assistantText string) {
	c := t.c
	if c.titles == nil {
		return
	}

	count, err := c.conversations.CountMessages(ctx, t.conv.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("conversation_id", t.conv.ID).Msg("skip title: cannot count messages")
		return
	}
	firstUserText := t.userText
	if !t.isNew {
		first, err := c.conversations.FirstUserMessage(ctx, t.conv.ID)
		if err != nil {
			c.log.Warn().Err(err).Str("conversation_id", t.conv.ID).Msg("skip title: cannot load first user message")
			return
		}
		firstUserText = first.Content
	}
	if !title.ShouldGenerate(t.isNew, count, t.titleAtStart, firstUserText) {
		return
	}

	accepted := c.titles.Enqueue(title.Job{
		ConversationID: t.conv.ID,
		UserText:       t.userText,
		AssistantText:  assistantText,
		RequestID:      platformerrors.RequestIDFromContext(ctx),
	})
	c.observer.TitleDispatched(accepted)
	if !accepted {
		c.log.Warn().Str("conversation_id", t.conv.ID).Msg("title queue full, dropping job")
	}
}
