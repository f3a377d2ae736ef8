package repository

import (
	"github.com/google/wire"

	"persona-chat/internal/infrastructure/database/repository/conversationrepo"
	"persona-chat/internal/infrastructure/database/repository/favoriterepo"
	"persona-chat/internal/infrastructure/database/repository/usagerepo"
	"persona-chat/internal/infrastructure/database/repository/userrepo"
)

var RepositoryProvider = wire.NewSet(
	conversationrepo.NewConversationGormRepository,
	conversationrepo.NewMessageGormRepository,
	usagerepo.NewUsageGormRepository,
	favoriterepo.NewFavoriteGormRepository,
	userrepo.NewUserGormRepository,
)
