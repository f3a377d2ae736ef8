package usagerepo

import (
	"context"
	"time"

	"persona-chat/internal/domain/usage"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/dbschema"
	"persona-chat/internal/infrastructure/database/transaction"
)

type UsageGormRepository struct {
	db *transaction.Database
}

var _ usage.Repository = (*UsageGormRepository)(nil)

func NewUsageGormRepository(db *transaction.Database) usage.Repository {
	return &UsageGormRepository{db}
}

// Create implements usage.Repository.
func (repo *UsageGormRepository) Create(ctx context.Context, entry *usage.Entry) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.NewSchemaMessageUsageLog(entry)).Error; err != nil {
		return database.AsRepositoryError(ctx, err, "failed to record usage")
	}
	return nil
}

// CountSince implements usage.Repository.
func (repo *UsageGormRepository) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := repo.db.GetTx(ctx).
		Model(&dbschema.MessageUsageLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, database.AsRepositoryError(ctx, err, "failed to count usage")
	}
	return count, nil
}

// CreatedSince implements usage.Repository.
func (repo *UsageGormRepository) CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := repo.db.GetTx(ctx).
		Model(&dbschema.MessageUsageLog{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to read usage history")
	}
	return times, nil
}

// DeleteBefore implements usage.Repository.
func (repo *UsageGormRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := repo.db.GetTx(ctx).Where("created_at < ?", cutoff).Delete(&dbschema.MessageUsageLog{})
	if result.Error != nil {
		return 0, database.AsRepositoryError(ctx, result.Error, "failed to prune usage")
	}
	return result.RowsAffected, nil
}
