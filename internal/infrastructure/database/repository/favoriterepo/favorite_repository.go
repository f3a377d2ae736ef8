package favoriterepo

import (
	"context"

	"gorm.io/gorm/clause"

	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/dbschema"
	"persona-chat/internal/infrastructure/database/transaction"
	"persona-chat/internal/utils/functional"
)

type FavoriteGormRepository struct {
	db *transaction.Database
}

var _ favorite.Repository = (*FavoriteGormRepository)(nil)

func NewFavoriteGormRepository(db *transaction.Database) favorite.Repository {
	return &FavoriteGormRepository{db}
}

func (repo *FavoriteGormRepository) List(ctx context.Context, userID string) ([]*favorite.Favorite, error) {
	var rows []*dbschema.Favorite
	if err := repo.db.GetTx(ctx).Where("user_id = ?", userID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to list favorites")
	}
	return functional.Map(rows, func(item *dbschema.Favorite) *favorite.Favorite {
		return item.EtoD()
	}), nil
}

func (repo *FavoriteGormRepository) Add(ctx context.Context, fav *favorite.Favorite) error {
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(dbschema.NewSchemaFavorite(fav)).Error
	if err != nil {
		return database.AsRepositoryError(ctx, err, "failed to add favorite")
	}
	return nil
}

func (repo *FavoriteGormRepository) Remove(ctx context.Context, userID, characterSlug string) (bool, error) {
	result := repo.db.GetTx(ctx).
		Where("user_id = ? AND character_slug = ?", userID, characterSlug).
		Delete(&dbschema.Favorite{})
	if result.Error != nil {
		return false, database.AsRepositoryError(ctx, result.Error, "failed to remove favorite")
	}
	return result.RowsAffected > 0, nil
}

func (repo *FavoriteGormRepository) Exists(ctx context.Context, userID, characterSlug string) (bool, error) {
	var count int64
	err := repo.db.GetTx(ctx).
		Model(&dbschema.Favorite{}).
		Where("user_id = ? AND character_slug = ?", userID, characterSlug).
		Count(&count).Error
	if err != nil {
		return false, database.AsRepositoryError(ctx, err, "failed to read favorite")
	}
	return count > 0, nil
}
