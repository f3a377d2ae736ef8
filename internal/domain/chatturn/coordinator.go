package chatturn

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/title"
	"persona-chat/internal/domain/usage"
	"persona-chat/internal/utils/redact"
)

// Sink receives the streamed answer. Begin is called once the conversation is known and before the
// first Write; implementations may defer committing a response until the first Write.
type Sink interface {
	Begin(conversationID string)
	Write(delta string) error
}

// Coordinator runs chat turns: it gates on quota, persists the user message, streams the character's
// answer and records it once the upstream finishes.
type Coordinator struct {
	characters    character.Catalog
	models        *model.Catalog
	conversations *conversation.ConversationService
	usage         *usage.Service
	tx            domain.Transactor
	provider      completion.Provider
	titles        title.Dispatcher
	redactor      *redact.Redactor
	observer      Observer
	validate      *validator.Validate
	log           zerolog.Logger
}

// Dependencies groups the collaborators of a Coordinator.
type Dependencies struct {
	Characters    character.Catalog
	Models        *model.Catalog
	Conversations *conversation.ConversationService
	Usage         *usage.Service
	Transactor    domain.Transactor
	Provider      completion.Provider
	Titles        title.Dispatcher
	Redactor      *redact.Redactor
	Observer      Observer
	Logger        zerolog.Logger
}

func NewCoordinator(deps Dependencies) *Coordinator {
	observer := deps.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	redactor := deps.Redactor
	if redactor == nil {
		redactor = redact.New(redact.LevelHashed, "")
	}
	return &Coordinator{
		characters:    deps.Characters,
		models:        deps.Models,
		conversations: deps.Conversations,
		usage:         deps.Usage,
		tx:            deps.Transactor,
		provider:      deps.Provider,
		titles:        deps.Titles,
		redactor:      redactor,
		observer:      observer,
		validate:      newValidator(),
		log:           deps.Logger.With().Str("component", "chat-turn").Logger(),
	}
}

// HandleTurn runs one turn for principal. Errors returned before sink.Write was first called describe
// a turn that produced no output and can be rendered as an error response; later errors mean the stream
// was truncated.
func (c *Coordinator) HandleTurn(ctx context.Context, principal domain.Principal, body []byte, sink Sink) error {
	t := c.newTurn(principal)
	err := t.run(ctx, body, sink)
	c.observer.Finished(t.outcome, t.modelID, time.Since(t.startedAt).Seconds())
	return err
}
