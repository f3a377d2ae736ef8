package userhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/domain/user"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/interfaces/httpserver/responses/userres"
	"persona-chat/internal/utils/platformerrors"
)

// UserHandler serves the caller's profile and favorite characters.
type UserHandler struct {
	users     *user.Service
	favorites *favorite.Service
}

func NewUserHandler(users *user.Service, favorites *favorite.Service) *UserHandler {
	return &UserHandler{users: users, favorites: favorites}
}

// UpdateProfileRequest carries the profile fields a caller may change. Omitted fields are kept.
type UpdateProfileRequest struct {
	DisplayName         *string        `json:"display_name"`
	OnboardingCompleted *bool          `json:"onboarding_completed"`
	Preferences         map[string]any `json:"preferences"`
}

// GetMe godoc
// @Summary Get own profile
// @Tags Users API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} userres.ProfileResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/me [get]
func (h *UserHandler) GetMe(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "3e5a7c9e-1b2d-4fe0-8c6e-8a0c2e4a6c1d")
		return
	}

	u, err := h.users.GetProfile(reqCtx.Request.Context(), principal)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to load profile")
		return
	}
	reqCtx.JSON(http.StatusOK, userres.NewProfileResponse(u))
}

// UpdateMe godoc
// @Summary Update own profile
// @Description Sets the display name (at most 50 characters), the onboarding flag or UI preferences.
// @Tags Users API
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile update"
// @Success 200 {object} userres.ProfileResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/me [patch]
func (h *UserHandler) UpdateMe(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "4f6b8d0f-2c3e-4a01-9d7f-9b1d3f5b7d2e")
		return
	}

	var req UpdateProfileRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid profile update", "5a7c9e1a-3d4f-4b12-8e8a-0c2e4a6c8e3f")
		return
	}

	u, err := h.users.UpdateProfile(reqCtx.Request.Context(), principal, user.ProfileUpdate{
		DisplayName:         req.DisplayName,
		OnboardingCompleted: req.OnboardingCompleted,
		Preferences:         req.Preferences,
	})
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to update profile")
		return
	}
	reqCtx.JSON(http.StatusOK, userres.NewProfileResponse(u))
}

// ListFavorites godoc
// @Summary List favorite characters
// @Tags Users API
// @Security BearerAuth
// @Produce json
// @Success 200 {object} userres.FavoritesResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /v1/favorites [get]
func (h *UserHandler) ListFavorites(reqCtx *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "6b8d0f2b-4e5a-4c23-9f9b-1d3f5b7d9f40")
		return
	}

	slugs, err := h.favorites.List(reqCtx.Request.Context(), principal.ID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to list favorites")
		return
	}
	reqCtx.JSON(http.StatusOK, userres.FavoritesResponse{Object: "list", Data: slugs})
}

// AddFavorite godoc
// @Summary Favorite a character
// @Tags Users API
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Character slug"
// @Success 200 {object} userres.FavoriteStateResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/favorites/{slug} [put]
func (h *UserHandler) AddFavorite(reqCtx *gin.Context) {
	h.changeFavorite(reqCtx, func(userID, slug string) (bool, error) {
		return true, h.favorites.Add(reqCtx.Request.Context(), userID, slug)
	})
}

// RemoveFavorite godoc
// @Summary Unfavorite a character
// @Tags Users API
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Character slug"
// @Success 200 {object} userres.FavoriteStateResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/favorites/{slug} [delete]
func (h *UserHandler) RemoveFavorite(reqCtx *gin.Context) {
	h.changeFavorite(reqCtx, func(userID, slug string) (bool, error) {
		return false, h.favorites.Remove(reqCtx.Request.Context(), userID, slug)
	})
}

// ToggleFavorite godoc
// @Summary Toggle a favorite
// @Tags Users API
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Character slug"
// @Success 200 {object} userres.FavoriteStateResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/favorites/{slug}/toggle [post]
func (h *UserHandler) ToggleFavorite(reqCtx *gin.Context) {
	h.changeFavorite(reqCtx, func(userID, slug string) (bool, error) {
		return h.favorites.Toggle(reqCtx.Request.Context(), userID, slug)
	})
}

func (h *UserHandler) changeFavorite(reqCtx *gin.Context, change func(userID, slug string) (bool, error)) {
	principal, ok := middleware.PrincipalFromContext(reqCtx)
	if !ok {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeUnauthorized, "authentication required", "7c9e1a3c-5f6b-4d34-8a0c-2e4a6c8e0a51")
		return
	}

	slug := reqCtx.Param("slug")
	state, err := change(principal.ID, slug)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to update favorite")
		return
	}
	reqCtx.JSON(http.StatusOK, userres.FavoriteStateResponse{CharacterSlug: slug, Favorite: state})
}
