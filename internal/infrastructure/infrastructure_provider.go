package infrastructure

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"persona-chat/internal/config"
	"persona-chat/internal/domain"
	"persona-chat/internal/domain/chatturn"
	"persona-chat/internal/domain/completion"
	"persona-chat/internal/domain/title"
	"persona-chat/internal/infrastructure/auth"
	"persona-chat/internal/infrastructure/crontab"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/repository"
	"persona-chat/internal/infrastructure/database/transaction"
	"persona-chat/internal/infrastructure/inference"
	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/infrastructure/metrics"
	"persona-chat/internal/infrastructure/observability"
	"persona-chat/internal/infrastructure/titlequeue"
)

// ProvideConfig returns the configuration loaded at startup, loading it if nothing has yet.
func ProvideConfig() (*config.Config, error) {
	if cfg := config.GetGlobal(); cfg != nil {
		return cfg, nil
	}
	return config.Load()
}

// ProvideValidator provides the bearer token validator
func ProvideValidator(cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(context.Background(), auth.Options{
		Secret:       cfg.AuthJWTSecret,
		JWKSURL:      cfg.JWKSURL,
		Issuer:       cfg.AuthIssuer,
		Audience:     cfg.AuthAudience,
		RefreshEvery: cfg.RefreshJWKSInterval,
		ClockSkew:    cfg.AuthClockSkew,
	}, log)
}

// ProvideDatabase provides a database connection
func ProvideDatabase(cfg *config.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(database.Config{
		DatabaseURL: cfg.DatabaseURL,
		ReadURL:     cfg.DatabaseReadURL,
		MaxIdle:     cfg.DBMaxIdle,
		MaxOpen:     cfg.DBMaxOpen,
		MaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if _, err := database.AutoMigrate(context.Background(), db, log); err != nil {
			log.Error().Err(err).Msg("database migration failed")
			return nil, err
		}
	}

	return db, nil
}

// ProvideTransactionDatabase provides a transaction database wrapper
func ProvideTransactionDatabase(db *gorm.DB) *transaction.Database {
	return transaction.NewDatabase(db)
}

func ProvideInferenceProvider(cfg *config.Config) *inference.InferenceProvider {
	return inference.NewInferenceProvider(inference.Options{
		BaseURL:  cfg.OpenRouterBaseURL,
		APIKey:   cfg.OpenRouterAPIKey,
		Referer:  cfg.OpenRouterReferer,
		AppTitle: cfg.OpenRouterAppTitle,
		Timeout:  cfg.UpstreamTimeout,
	})
}

// ProvideTitlePool provides the background title workers. They are started by the application.
func ProvideTitlePool(generator *title.Generator, cfg *config.Config, log zerolog.Logger) (*titlequeue.Pool, error) {
	instrumenter, err := observability.NewJobInstrumenter("title")
	if err != nil {
		return nil, err
	}
	return titlequeue.NewPool(generator, instrumenter, titlequeue.Config{
		WorkerCount: cfg.TitleWorkerCount,
		QueueSize:   cfg.TitleQueueSize,
		TaskTimeout: cfg.TitleTaskTimeout,
	}, log), nil
}

func ProvideTurnObserver() chatturn.Observer {
	return metrics.NewTurnObserver()
}

// Infrastructure groups the handles the HTTP server needs for auth and readiness.
type Infrastructure struct {
	DB        *gorm.DB
	Validator *auth.Validator
	Logger    zerolog.Logger
}

// NewInfrastructure creates a new infrastructure instance
func NewInfrastructure(
	db *gorm.DB,
	validator *auth.Validator,
	logger zerolog.Logger,
) *Infrastructure {
	return &Infrastructure{
		DB:        db,
		Validator: validator,
		Logger:    logger,
	}
}

// InfrastructureProvider provides all infrastructure dependencies
var InfrastructureProvider = wire.NewSet(
	NewInfrastructure,

	// Config
	ProvideConfig,

	// Database
	ProvideDatabase,
	ProvideTransactionDatabase,
	wire.Bind(new(domain.Transactor), new(*transaction.Database)),

	// Repositories
	repository.RepositoryProvider,

	// Upstream completion provider
	ProvideInferenceProvider,
	wire.Bind(new(completion.Provider), new(*inference.InferenceProvider)),

	// Title workers
	ProvideTitlePool,
	wire.Bind(new(title.Dispatcher), new(*titlequeue.Pool)),

	// Metrics
	ProvideTurnObserver,

	// Logger
	logger.GetLogger,

	// Auth
	ProvideValidator,

	// Crontab for usage retention
	crontab.NewCrontab,
)
