package dbschema

import "time"

// BaseModel carries the identity and timestamps shared by mutable rows.
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
