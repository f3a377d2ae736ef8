package conversation

import (
	"github.com/gin-gonic/gin"

	"persona-chat/internal/interfaces/httpserver/handlers/conversationhandler"
)

type ConversationRoute struct {
	handler *conversationhandler.ConversationHandler
}

func NewConversationRoute(handler *conversationhandler.ConversationHandler) *ConversationRoute {
	return &ConversationRoute{handler: handler}
}

func (route *ConversationRoute) RegisterRouter(router gin.IRouter) {
	conversations := router.Group("/conversations")
	conversations.GET("", route.handler.ListConversations)
	conversations.GET("/:conversation_id", route.handler.GetConversation)
	conversations.PATCH("/:conversation_id", route.handler.UpdateConversation)
	conversations.DELETE("/:conversation_id", route.handler.DeleteConversation)
}
