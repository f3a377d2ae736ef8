package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"persona-chat/migrations"
)

const migrationsTable = "schema_migrations"

// ErrDirtySchema is returned when a previous migration failed halfway. It needs a manual fix; forcing
// the version could leave a half applied schema in place.
var ErrDirtySchema = errors.New("schema is dirty")

// AutoMigrate applies the embedded migrations on a dedicated connection and returns the resulting
// schema version.
func AutoMigrate(ctx context.Context, gormDB *gorm.DB, log zerolog.Logger) (version uint, err error) {
	if err := gormDB.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS " + SchemaName).Error; err != nil {
		return 0, fmt.Errorf("create schema %s: %w", SchemaName, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return 0, fmt.Errorf("retrieve sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire migration connection: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable: migrationsTable,
		SchemaName:      SchemaName,
	})
	if err != nil {
		_ = conn.Close()
		return 0, fmt.Errorf("init postgres migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = driver.Close()
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return 0, fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	before, dirty, err := currentVersion(migrator)
	if err != nil {
		return 0, err
	}
	if dirty {
		return before, fmt.Errorf("%w at version %d", ErrDirtySchema, before)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, fmt.Errorf("apply migrations: %w", err)
	}

	after, _, err := currentVersion(migrator)
	if err != nil {
		return before, err
	}
	log.Info().Uint("from_version", before).Uint("to_version", after).Msg("database schema up to date")
	return after, nil
}

func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}
