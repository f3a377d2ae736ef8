package dbschema

import (
	"time"

	"persona-chat/internal/domain/favorite"
)

type Favorite struct {
	UserID        string    `gorm:"type:varchar(255);primaryKey"`
	CharacterSlug string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt     time.Time `gorm:"not null"`
}

func NewSchemaFavorite(f *favorite.Favorite) *Favorite {
	return &Favorite{UserID: f.UserID, CharacterSlug: f.CharacterSlug, CreatedAt: f.CreatedAt}
}

func (f *Favorite) EtoD() *favorite.Favorite {
	return &favorite.Favorite{UserID: f.UserID, CharacterSlug: f.CharacterSlug, CreatedAt: f.CreatedAt}
}
