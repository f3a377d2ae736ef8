package conversationrepo

import (
	"context"

	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/infrastructure/database"
	"persona-chat/internal/infrastructure/database/dbschema"
	"persona-chat/internal/infrastructure/database/transaction"
	"persona-chat/internal/utils/functional"
)

type MessageGormRepository struct {
	db *transaction.Database
}

var _ conversation.MessageRepository = (*MessageGormRepository)(nil)

func NewMessageGormRepository(db *transaction.Database) conversation.MessageRepository {
	return &MessageGormRepository{db}
}

// Create implements conversation.MessageRepository.
func (repo *MessageGormRepository) Create(ctx context.Context, msg *conversation.Message) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.NewSchemaMessage(msg)).Error; err != nil {
		return database.AsRepositoryError(ctx, err, "failed to create message")
	}
	return nil
}

// CreateIfAbsent implements conversation.MessageRepository.
func (repo *MessageGormRepository) CreateIfAbsent(ctx context.Context, msg *conversation.Message) (bool, error) {
	result := repo.db.GetTx(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(dbschema.NewSchemaMessage(msg))
	if result.Error != nil {
		return false, database.AsRepositoryError(ctx, result.Error, "failed to create message")
	}
	return result.RowsAffected == 1, nil
}

// ListByConversation implements conversation.MessageRepository.
func (repo *MessageGormRepository) ListByConversation(ctx context.Context, conversationID string) ([]*conversation.Message, error) {
	var rows []*dbschema.Message
	err := repo.db.GetTx(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at").
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to list messages")
	}
	return functional.Map(rows, func(item *dbschema.Message) *conversation.Message {
		return item.EtoD()
	}), nil
}

// CountByConversation implements conversation.MessageRepository. It reads from the primary since it
// runs right after a write.
func (repo *MessageGormRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var count int64
	err := repo.db.GetTx(ctx).
		Clauses(dbresolver.Write).
		Model(&dbschema.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, database.AsRepositoryError(ctx, err, "failed to count messages")
	}
	return count, nil
}

// FirstByRole implements conversation.MessageRepository.
func (repo *MessageGormRepository) FirstByRole(ctx context.Context, conversationID string, role conversation.Role) (*conversation.Message, error) {
	var row dbschema.Message
	err := repo.db.GetTx(ctx).
		Clauses(dbresolver.Write).
		Where("conversation_id = ? AND role = ?", conversationID, string(role)).
		Order("created_at").
		Order("id").
		First(&row).Error
	if err != nil {
		return nil, database.AsRepositoryError(ctx, err, "failed to find message")
	}
	return row.EtoD(), nil
}
