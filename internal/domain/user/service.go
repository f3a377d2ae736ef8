package user

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"persona-chat/internal/domain"
	"persona-chat/internal/utils/platformerrors"
)

// Service provisions and edits user profiles.
type Service struct {
	repo        Repository
	provisioned sync.Map
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func fromPrincipal(principal domain.Principal) *User {
	now := time.Now().UTC()
	u := &User{
		ID:          uuid.NewString(),
		Subject:     principal.ID,
		Issuer:      principal.Issuer,
		Scopes:      principal.Scopes,
		Preferences: map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if principal.Email != "" {
		email := principal.Email
		u.Email = &email
	}
	if principal.Name != "" {
		name := principal.Name
		u.Name = &name
	}
	return u
}

// EnsureUser makes sure a profile row exists for principal. Each subject is written at most once per
// process lifetime.
func (s *Service) EnsureUser(ctx context.Context, principal domain.Principal) error {
	if !principal.Authenticated() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "authentication required", nil, "5d7f9b1d-3e4a-4c6d-8f0b-0e2a4c6e8fcc")
	}
	if _, seen := s.provisioned.Load(principal.ID); seen {
		return nil
	}
	if _, err := s.repo.Upsert(ctx, fromPrincipal(principal)); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to provision user")
	}
	s.provisioned.Store(principal.ID, struct{}{})
	return nil
}

// GetProfile returns the caller's profile, creating it when missing.
func (s *Service) GetProfile(ctx context.Context, principal domain.Principal) (*User, error) {
	u, err := s.repo.FindBySubject(ctx, principal.ID)
	if err == nil {
		return u, nil
	}
	if !platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load profile")
	}
	u, err = s.repo.Upsert(ctx, fromPrincipal(principal))
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to provision user")
	}
	s.provisioned.Store(principal.ID, struct{}{})
	return u, nil
}

// UpdateProfile applies update to the caller's profile.
func (s *Service) UpdateProfile(ctx context.Context, principal domain.Principal, update ProfileUpdate) (*User, error) {
	if update.DisplayName != nil {
		trimmed := strings.TrimSpace(*update.DisplayName)
		if utf8.RuneCountInString(trimmed) > DisplayNameMaxLength {
			msg := fmt.Sprintf("display name cannot exceed %d characters", DisplayNameMaxLength)
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, msg, nil, "6e8a0c2e-4f5b-4d7e-9a1c-1f3b5d7f9add").
				WithFields(platformerrors.FieldError{Field: "display_name", Message: msg})
		}
		update.DisplayName = &trimmed
	}
	if len(update.Preferences) > maxPreferenceKeys {
		msg := fmt.Sprintf("preferences cannot hold more than %d keys", maxPreferenceKeys)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, msg, nil, "7f9b1d3f-5a6c-4e8f-8b2d-2a4c6e8a0bee").
			WithFields(platformerrors.FieldError{Field: "preferences", Message: msg})
	}

	if _, err := s.GetProfile(ctx, principal); err != nil {
		return nil, err
	}
	u, err := s.repo.UpdateProfile(ctx, principal.ID, update)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update profile")
	}
	return u, nil
}
