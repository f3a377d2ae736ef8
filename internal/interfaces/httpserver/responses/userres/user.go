package userres

import (
	"persona-chat/internal/domain/user"
)

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	ID                  string         `json:"id"`
	Email               *string        `json:"email,omitempty"`
	Name                *string        `json:"name,omitempty"`
	DisplayName         *string        `json:"display_name,omitempty"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	Preferences         map[string]any `json:"preferences,omitempty"`
	CreatedAt           int64          `json:"created_at"`
	UpdatedAt           int64          `json:"updated_at"`
}

func NewProfileResponse(u *user.User) *ProfileResponse {
	return &ProfileResponse{
		ID:                  u.Subject,
		Email:               u.Email,
		Name:                u.Name,
		DisplayName:         u.DisplayName,
		OnboardingCompleted: u.OnboardingCompleted,
		Preferences:         u.Preferences,
		CreatedAt:           u.CreatedAt.Unix(),
		UpdatedAt:           u.UpdatedAt.Unix(),
	}
}

// FavoritesResponse lists favorited character slugs, oldest first.
type FavoritesResponse struct {
	Object string   `json:"object"`
	Data   []string `json:"data"`
}

// FavoriteStateResponse reports whether a character is a favorite after a change.
type FavoriteStateResponse struct {
	CharacterSlug string `json:"character_slug"`
	Favorite      bool   `json:"favorite"`
}
