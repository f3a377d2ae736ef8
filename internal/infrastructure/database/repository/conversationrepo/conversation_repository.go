package conversationrepo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/dbschema"
	"persona-chat/internal/infrastructure/database/transaction"
	"persona-chat/internal/utils/functional"
)

type ConversationGormRepository struct {
	db *transaction.Database
}

var _ conversation.ConversationRepository = (*ConversationGormRepository)(nil)

func NewConversationGormRepository(db *transaction.Database) conversation.ConversationRepository {
	return &ConversationGormRepository{db}
}

// Create implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Create(ctx context.Context, conv *conversation.Conversation) error {
	model := dbschema.NewSchemaConversation(conv)
	if err := repo.db.GetTx(ctx).Create(model).Error; err != nil {
		return database.AsRepositoryError(ctx, err, "failed to create conversation")
	}
	conv.CreatedAt = model.CreatedAt
	conv.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByID(ctx context.Context, id string) (*conversation.Conversation, error) {
	var row dbschema.Conversation
	if err := repo.db.GetTx(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to find conversation by ID")
	}
	return row.EtoD(), nil
}

func (repo *ConversationGormRepository) applyFilter(sql *gorm.DB, filter conversation.ConversationFilter) *gorm.DB {
	if filter.UserID != nil {
		sql = sql.Where("user_id = ?", *filter.UserID)
	}
	if filter.CharacterSlug != nil {
		sql = sql.Where("character_slug = ?", *filter.CharacterSlug)
	}
	return sql
}

// FindByFilter implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) FindByFilter(ctx context.Context, filter conversation.ConversationFilter, pagination *conversation.Pagination) ([]*conversation.Conversation, error) {
	sql := repo.applyFilter(repo.db.GetTx(ctx).Model(&dbschema.Conversation{}), filter).
		Order("updated_at DESC").
		Order("id")
	if pagination != nil {
		if pagination.Limit > 0 {
			sql = sql.Limit(pagination.Limit)
		}
		if pagination.Offset > 0 {
			sql = sql.Offset(pagination.Offset)
		}
	}

	var rows []*dbschema.Conversation
	if err := sql.Find(&rows).Error; err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to find conversations")
	}
	return functional.Map(rows, func(item *dbschema.Conversation) *conversation.Conversation {
		return item.EtoD()
	}), nil
}

// Count implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Count(ctx context.Context, filter conversation.ConversationFilter) (int64, error) {
	var count int64
	if err := repo.applyFilter(repo.db.GetTx(ctx).Model(&dbschema.Conversation{}), filter).Count(&count).Error; err != nil {
		return 0, database.AsRepositoryError(ctx, err, "failed to count conversations")
	}
	return count, nil
}

// UpdateTitle implements conversation.ConversationRepository. It leaves updated_at alone: only turns
// count as activity.
func (repo *ConversationGormRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	result := repo.db.GetTx(ctx).Model(&dbschema.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("title", title)
	if result.Error != nil {
		return database.AsRepositoryError(ctx, result.Error, "failed to update conversation title")
	}
	if result.RowsAffected == 0 {
		return database.AsRepositoryError(ctx, gorm.ErrRecordNotFound, "conversation not found")
	}
	return nil
}

// Touch implements conversation.ConversationRepository.
func (repo *ConversationGormRepository) Touch(ctx context.Context, id string, at time.Time) error {
	err := repo.db.GetTx(ctx).Model(&dbschema.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at).Error
	if err != nil {
		return database.AsRepositoryError(ctx, err, "failed to touch conversation")
	}
	return nil
}

// Delete implements conversation.ConversationRepository. Messages go with the row through the foreign key.
func (repo *ConversationGormRepository) Delete(ctx context.Context, id string) error {
	result := repo.db.GetTx(ctx).Where("id = ?", id).Delete(&dbschema.Conversation{})
	if result.Error != nil {
		return database.AsRepositoryError(ctx, result.Error, "failed to delete conversation")
	}
	if result.RowsAffected == 0 {
		return database.AsRepositoryError(ctx, gorm.ErrRecordNotFound, "conversation not found")
	}
	return nil
}
