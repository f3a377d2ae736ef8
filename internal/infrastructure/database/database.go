package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"persona-chat/internal/infrastructure/logger"
)

// SchemaName is the postgres schema holding every table of the service.
const SchemaName = "persona"

// Config holds database configuration
type Config struct {
	DatabaseURL string
	// ReadURL optionally points at a replica used for reads outside transactions.
	ReadURL     string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration
func Connect(cfg Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = gormlogger.Silent
	}

	log := logger.GetLogger()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   SchemaName + ".",
			SingularTable: false,
		},
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log.Error().
			Str("error_code", "6a1e0c3f-2b7d-4f59-9e84-1c0d3b5a7e21").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	if cfg.ReadURL != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadURL)},
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxIdleConns(cfg.MaxIdle).
			SetMaxOpenConns(cfg.MaxOpen).
			SetConnMaxLifetime(cfg.MaxLifetime)
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Msg("read replica registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("retrieve sql db: %w", err)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	log.Info().Msg("Successfully connected to database")
	return db, nil
}

// NewDB creates a new database connection using DSN
func NewDB(dsn string) (*gorm.DB, error) {
	return Connect(Config{
		DatabaseURL: dsn,
		MaxIdle:     10,
		MaxOpen:     25,
		MaxLifetime: time.Hour,
	})
}
