package users

import (
	"github.com/gin-gonic/gin"

	"persona-chat/internal/interfaces/httpserver/handlers/userhandler"
)

type UsersRoute struct {
	handler *userhandler.UserHandler
}

func NewUsersRoute(handler *userhandler.UserHandler) *UsersRoute {
	return &UsersRoute{handler: handler}
}

func (route *UsersRoute) RegisterRouter(router gin.IRouter) {
	router.GET("/me", route.handler.GetMe)
	router.PATCH("/me", route.handler.UpdateMe)

	favorites := router.Group("/favorites")
	favorites.GET("", route.handler.ListFavorites)
	favorites.PUT("/:slug", route.handler.AddFavorite)
	favorites.DELETE("/:slug", route.handler.RemoveFavorite)
	favorites.POST("/:slug/toggle", route.handler.ToggleFavorite)
}
