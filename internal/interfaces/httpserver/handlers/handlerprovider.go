package handlers

import (
	"github.com/google/wire"

	"persona-chat/internal/interfaces/httpserver/handlers/cataloghandler"
	"persona-chat/internal/interfaces/httpserver/handlers/chathandler"
	"persona-chat/internal/interfaces/httpserver/handlers/conversationhandler"
	"persona-chat/internal/interfaces/httpserver/handlers/usagehandler"
	"persona-chat/internal/interfaces/httpserver/handlers/userhandler"
)

var HandlerProvider = wire.NewSet(
	chathandler.NewChatHandler,
	conversationhandler.NewConversationHandler,
	usagehandler.NewUsageHandler,
	cataloghandler.NewCatalogHandler,
	userhandler.NewUserHandler,
)
