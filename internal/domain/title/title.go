package title

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/utils/stringutils"
)

const (
	// RefreshWindow is the message count up to which a placeholder title may still be replaced.
	RefreshWindow = 6

	systemPrompt     = "Generate a short, descriptive title (2-5 words) for this conversation. Return only the title, no quotes or punctuation at the end."
	assistantExcerpt = 500
	titleMaxTokens   = 20
	titleTemperature = float32(0.3)
)

// ShouldGenerate decides whether a completed turn warrants a title. New conversations always do;
// young conversations still carrying the placeholder derived from their first user message do too.
// messageCount is the count after the assistant message was persisted.
func ShouldGenerate(isNew bool, messageCount int64, currentTitle, firstUserText string) bool {
	if isNew {
		return true
	}
	if messageCount > RefreshWindow {
		return false
	}
	return currentTitle == conversation.PlaceholderTitle(firstUserText)
}

// Job is a request to title a conversation from one exchange.
type Job struct {
	ConversationID string
	UserText       string
	AssistantText  string
	RequestID      string
}

// Dispatcher hands jobs to background generation without blocking the caller.
type Dispatcher interface {
	// Enqueue reports whether the job was accepted.
	Enqueue(job Job) bool
}

// TitleStore persists generated titles.
type TitleStore interface {
	ApplyGeneratedTitle(ctx context.Context, conversationID, title string) error
}

// Generator asks the completion provider for a title and stores it.
type Generator struct {
	provider completion.Provider
	store    TitleStore
	model    string
	log      zerolog.Logger
}

func NewGenerator(provider completion.Provider, store TitleStore, model string, log zerolog.Logger) *Generator {
	return &Generator{
		provider: provider,
		store:    store,
		model:    model,
		log:      log.With().Str("component", "title-generator").Logger(),
	}
}

// BuildRequest assembles the completion request for job.
func (g *Generator) BuildRequest(job Job) completion.Request {
	temperature := titleTemperature
	return completion.Request{
		Model: g.model,
		Messages: []completion.Message{
			{Role: completion.RoleSystem, Content: systemPrompt},
			{Role: completion.RoleUser, Content: "User: " + job.UserText + "\nAssistant: " + stringutils.Prefix(job.AssistantText, assistantExcerpt)},
		},
		Temperature: &temperature,
		MaxTokens:   titleMaxTokens,
	}
}

// Generate produces and stores a title for the job. An empty model answer leaves the title untouched
// and is not an error.
func (g *Generator) Generate(ctx context.Context, job Job) error {
	raw, err := g.provider.Complete(ctx, g.BuildRequest(job))
	if err != nil {
		return fmt.Errorf("complete title: %w", err)
	}

	title := stringutils.CleanGeneratedTitle(raw, conversation.TitleMaxLength)
	if strings.TrimSpace(title) == "" {
		g.log.Debug().Str("conversation_id", job.ConversationID).Msg("title generation returned empty text")
		return nil
	}

	if err := g.store.ApplyGeneratedTitle(ctx, job.ConversationID, title); err != nil {
		return fmt.Errorf("store title: %w", err)
	}
	g.log.Debug().Str("conversation_id", job.ConversationID).Str("title", title).Msg("conversation titled")
	return nil
}
