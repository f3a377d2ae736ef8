package userrepo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"persona-chat/internal/domain/user"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/dbschema"
	"persona-chat/internal/infrastructure/database/transaction"
)

type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *transaction.Database) user.Repository {
	return &UserGormRepository{db}
}

// Upsert implements user.Repository. Identity fields follow the latest token; profile fields are kept.
func (repo *UserGormRepository) Upsert(ctx context.Context, u *user.User) (*user.User, error) {
	model := dbschema.NewSchemaUser(u)
	err := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"issuer", "email", "name", "scopes", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to upsert user")
	}
	return repo.FindBySubject(ctx, u.Subject)
}

// FindBySubject implements user.Repository.
func (repo *UserGormRepository) FindBySubject(ctx context.Context, subject string) (*user.User, error) {
	var row dbschema.User
	if err := repo.db.GetTx(ctx).Where("subject = ?", subject).First(&row).Error; err != nil {
		return nil, database.AsRepositoryError(ctx, err, "user not found")
	}
	return row.EtoD(), nil
}

// UpdateProfile implements user.Repository. Preferences are merged key by key.
func (repo *UserGormRepository) UpdateProfile(ctx context.Context, subject string, update user.ProfileUpdate) (*user.User, error) {
	var out *user.User
	err := repo.db.WithinTransaction(ctx, func(ctx context.Context) error {
		var row dbschema.User
		tx := repo.db.GetTx(ctx)
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("subject = ?", subject).First(&row).Error; err != nil {
			return database.AsRepositoryError(ctx, err, "user not found")
		}

		updates := map[string]any{"updated_at": time.Now().UTC()}
		if update.DisplayName != nil {
			updates["display_name"] = *update.DisplayName
		}
		if update.OnboardingCompleted != nil {
			updates["onboarding_completed"] = *update.OnboardingCompleted
		}
		if len(update.Preferences) > 0 {
			merged := row.Preferences
			if merged == nil {
				merged = map[string]any{}
			}
			for k, v := range update.Preferences {
				merged[k] = v
			}
			updates["preferences"] = merged
		}
		if err := tx.Model(&dbschema.User{}).Where("subject = ?", subject).Updates(updates).Error; err != nil {
			return database.AsRepositoryError(ctx, err, "failed to update user")
		}

		var updated dbschema.User
		if err := tx.Where("subject = ?", subject).First(&updated).Error; err != nil {
			return database.AsRepositoryError(ctx, err, "user not found")
		}
		out = updated.EtoD()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
