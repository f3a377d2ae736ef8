// Package serviceprovider wires the domain services.
package serviceprovider

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"persona-chat/internal/config"
	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/chatturn"
	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/domain/model"
	"persona-chat/internal/domain/title"
	"persona-chat/internal/domain/usage"
	"persona-chat/internal/domain/user"
	"persona-chat/internal/utils/redact"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	// Reference data
	character.NewRoster,
	wire.Bind(new(character.Catalog), new(*character.Roster)),
	ProvideModelCatalog,

	// Conversations and quota
	conversation.NewConversationService,
	ProvideUsageService,

	// Profiles
	user.NewService,
	favorite.NewService,

	// Chat turns
	ProvideRedactor,
	ProvideTitleGenerator,
	ProvideCoordinator,
)

func ProvideModelCatalog(cfg *config.Config) (*model.Catalog, error) {
	return model.NewCatalog(cfg.DefaultModel, cfg.AllowedModels)
}

func ProvideUsageService(repo usage.Repository, cfg *config.Config) *usage.Service {
	return usage.NewService(repo, cfg.DailyMessageLimit)
}

func ProvideRedactor(cfg *config.Config) *redact.Redactor {
	return redact.New(redact.ParseLevel(cfg.LogContentLevel), cfg.LogContentSalt)
}

func ProvideTitleGenerator(provider completion.Provider, conversations *conversation.ConversationService, cfg *config.Config, log zerolog.Logger) *title.Generator {
	return title.NewGenerator(provider, conversations, cfg.TitleModel, log)
}

func ProvideCoordinator(
	characters character.Catalog,
	models *model.Catalog,
	conversations *conversation.ConversationService,
	usageService *usage.Service,
	tx domain.Transactor,
	provider completion.Provider,
	titles title.Dispatcher,
	redactor *redact.Redactor,
	observer chatturn.Observer,
	log zerolog.Logger,
) *chatturn.Coordinator {
	return chatturn.NewCoordinator(chatturn.Dependencies{
		Characters:    characters,
		Models:        models,
		Conversations: conversations,
		Usage:         usageService,
		Transactor:    tx,
		Provider:      provider,
		Titles:        titles,
		Redactor:      redactor,
		Observer:      observer,
		Logger:        log,
	})
}
