package routes

import (
	"github.com/google/wire"

	"persona-chat/internal/interfaces/httpserver/handlers"
	v1 "persona-chat/internal/interfaces/httpserver/routes/v1"
	"persona-chat/internal/interfaces/httpserver/routes/v1/catalog"
	"persona-chat/internal/interfaces/httpserver/routes/v1/chat"
	"persona-chat/internal/interfaces/httpserver/routes/v1/conversation"
	"persona-chat/internal/interfaces/httpserver/routes/v1/usage"
	"persona-chat/internal/interfaces/httpserver/routes/v1/users"
)

var RouteProvider = wire.NewSet(
	// Handlers
	handlers.HandlerProvider,

	// Routes
	v1.NewV1Route,
	chat.NewChatRoute,
	conversation.NewConversationRoute,
	usage.NewUsageRoute,
	catalog.NewCatalogRoute,
	users.NewUsersRoute,
)
