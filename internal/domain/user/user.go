package user

import (
	"context"
	"time"
)

const (
	DisplayNameMaxLength = 50
	maxPreferenceKeys    = 32
)

// User is the local profile of an authenticated subject.
type User struct {
	ID                  string
	Subject             string
	Issuer              string
	Email               *string
	Name                *string
	DisplayName         *string
	OnboardingCompleted bool
	Scopes              []string
	Preferences         map[string]any
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProfileUpdate carries the fields a user may change about themselves. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName         *string
	OnboardingCompleted *bool
	Preferences         map[string]any
}

// Repository persists users keyed by subject.
type Repository interface {
	// Upsert inserts u or refreshes the identity fields of the existing row with the same subject.
	Upsert(ctx context.Context, u *User) (*User, error)
	FindBySubject(ctx context.Context, subject string) (*User, error)
	UpdateProfile(ctx context.Context, subject string, update ProfileUpdate) (*User, error)
}
