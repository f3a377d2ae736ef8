package usage

import (
	"context"
	"time"
)

// Repository is the usage ledger store.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	// CountSince counts the user's entries created at or after since.
	CountSince(ctx context.Context, userID string, since time.Time) (int64, error)
	// CreatedSince returns creation times of the user's entries at or after since.
	CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
