package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/config"
	"persona-chat/internal/interfaces/httpserver/routes/v1/catalog"
	"persona-chat/internal/interfaces/httpserver/routes/v1/chat"
	"persona-chat/internal/interfaces/httpserver/routes/v1/conversation"
	"persona-chat/internal/interfaces/httpserver/routes/v1/usage"
	"persona-chat/internal/interfaces/httpserver/routes/v1/users"
)

type V1Route struct {
	chat         *chat.ChatRoute
	conversation *conversation.ConversationRoute
	usage        *usage.UsageRoute
	catalog      *catalog.CatalogRoute
	users        *users.UsersRoute
}

func NewV1Route(
	chat *chat.ChatRoute,
	conversation *conversation.ConversationRoute,
	usage *usage.UsageRoute,
	catalog *catalog.CatalogRoute,
	users *users.UsersRoute,
) *V1Route {
	return &V1Route{
		chat,
		conversation,
		usage,
		catalog,
		users,
	}
}

// RegisterRouter registers the authenticated v1 API.
func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")

	v1Route.chat.RegisterRouter(v1Router)
	v1Route.conversation.RegisterRouter(v1Router)
	v1Route.usage.RegisterRouter(v1Router)
	v1Route.catalog.RegisterRouter(v1Router)
	v1Route.users.RegisterRouter(v1Router)
}

// RegisterPublicRouter registers endpoints that do not require authentication
func (v1Route *V1Route) RegisterPublicRouter(router gin.IRouter, ready gin.HandlerFunc) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/healthz", GetHealthz)
	v1Router.GET("/readyz", ready)
}

// GetVersion godoc
// @Summary Get API build version
// @Description Returns the current build version of the API server and environment reload timestamp.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Version information including version number and environment reload timestamp"
// @Router /v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": config.GetEnvReloadedAt().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// GetHealthz godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API server. Used by orchestrators and monitoring systems.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Health status OK"
// @Router /v1/healthz [get]
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
