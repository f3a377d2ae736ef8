package catalog

import (
	"github.com/gin-gonic/gin"

	"persona-chat/internal/interfaces/httpserver/handlers/cataloghandler"
)

// CatalogRoute serves reference data: characters and models.
type CatalogRoute struct {
	handler *cataloghandler.CatalogHandler
}

func NewCatalogRoute(handler *cataloghandler.CatalogHandler) *CatalogRoute {
	return &CatalogRoute{handler: handler}
}

func (route *CatalogRoute) RegisterRouter(router gin.IRouter) {
	characters := router.Group("/characters")
	characters.GET("", route.handler.ListCharacters)
	characters.GET("/:slug", route.handler.GetCharacter)

	router.GET("/models", route.handler.ListModels)
}
