package dbschema

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"

	"persona-chat/internal/domain/user"
)

// User represents the persisted profile of an authenticated subject.
type User struct {
	BaseModel
	Subject             string            `gorm:"type:varchar(255);not null;uniqueIndex"`
	Issuer              string            `gorm:"type:varchar(255);not null;default:''"`
	Email               *string           `gorm:"type:varchar(320)"`
	Name                *string           `gorm:"type:varchar(255)"`
	DisplayName         *string           `gorm:"type:varchar(50)"`
	OnboardingCompleted bool              `gorm:"not null;default:false"`
	Scopes              pq.StringArray    `gorm:"type:text[]"`
	Preferences         datatypes.JSONMap `gorm:"type:jsonb"`
}

// NewSchemaUser converts a domain user into a schema instance.
func NewSchemaUser(u *user.User) *User {
	if u == nil {
		return nil
	}
	preferences := datatypes.JSONMap(u.Preferences)
	if preferences == nil {
		preferences = datatypes.JSONMap{}
	}
	return &User{
		BaseModel: BaseModel{
			ID:        u.ID,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		},
		Subject:             u.Subject,
		Issuer:              u.Issuer,
		Email:               u.Email,
		Name:                u.Name,
		DisplayName:         u.DisplayName,
		OnboardingCompleted: u.OnboardingCompleted,
		Scopes:              pq.StringArray(u.Scopes),
		Preferences:         preferences,
	}
}

// EtoD converts a schema user back to the domain representation.
func (u *User) EtoD() *user.User {
	if u == nil {
		return nil
	}
	preferences := map[string]any(u.Preferences)
	if preferences == nil {
		preferences = map[string]any{}
	}
	return &user.User{
		ID:                  u.ID,
		Subject:             u.Subject,
		Issuer:              u.Issuer,
		Email:               u.Email,
		Name:                u.Name,
		DisplayName:         u.DisplayName,
		OnboardingCompleted: u.OnboardingCompleted,
		Scopes:              []string(u.Scopes),
		Preferences:         preferences,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}
