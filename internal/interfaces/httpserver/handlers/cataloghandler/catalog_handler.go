package cataloghandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/domain/model"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/interfaces/httpserver/responses/catalogres"
	"persona-chat/internal/utils/platformerrors"
)

// CatalogHandler serves the character roster and the selectable models.
type CatalogHandler struct {
	characters character.Catalog
	models     *model.Catalog
	favorites  *favorite.Service
}

func NewCatalogHandler(characters character.Catalog, models *model.Catalog, favorites *favorite.Service) *CatalogHandler {
	return &CatalogHandler{
		characters: characters,
		models:     models,
		favorites:  favorites,
	}
}

// ListCharacters godoc
// @Summary List characters
// @Description Returns every character with its opener messages. Characters the caller favorited are flagged.
// @Tags Characters API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} catalogres.CharacterListResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/characters [get]
func (h *CatalogHandler) ListCharacters(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "0b2d4f6b-8e9a-4cbd-9f3b-5d7f9b1d3fea")
		return
	}

	slugs, err := h.favorites.List(reqCtx.Request.Context(), principal.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to load favorites")
		return
	}
	favorites := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		favorites[slug] = true
	}

	reqCtx.JSON(http.StatusOK, catalogres.NewCharacterListResponse(h.characters.All(), favorites))
}

// GetCharacter godoc
// @Summary Get a character
// @Tags Characters API
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Character slug"
// @Success 200 {object} catalogres.CharacterResponse
// @Failure 401 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/characters/{slug} [get]
func (h *CatalogHandler) GetCharacter(reqCtx *gin.Context) {
	if _, ok := middleware.PrincipalFromContext(reqCtx); !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "1c3e5a7c-9f0b-4dce-8a4c-6e8a0c2e4afb")
		return
	}

	c, ok := h.characters.Get(reqCtx.Param("slug"))
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeNotFound, "Character not found", "2d4f6b8d-0a1c-4edf-9b5d-7f9b1d3f5b0c")
		return
	}
	reqCtx.JSON(http.StatusOK, catalogres.NewCharacterResponse(c, false))
}

// ListModels godoc
// @Summary List selectable models
// @Description Returns the allow-listed upstream models; the default model is flagged.
// @Tags Models API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} catalogres.ModelListResponse
// @Router /v1/models [get]
func (h *CatalogHandler) ListModels(reqCtx *gin.Context) {
	reqCtx.JSON(http.StatusOK, catalogres.NewModelListResponse(h.models.List()))
}
