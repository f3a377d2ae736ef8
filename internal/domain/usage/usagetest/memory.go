// Package usagetest provides an in-memory usage ledger for tests.
package usagetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"persona-chat/internal/domain/usage"
)

// Ledger is a goroutine-safe in-memory usage.Repository.
type Ledger struct {
	mu      sync.Mutex
	entries []usage.Entry

	// Err, when set, fails every read.
	Err error
}

var _ usage.Repository = (*Ledger)(nil)

// SeedN records n entries for userID at the given time.
func (l *Ledger) SeedN(userID string, n int, at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i < n; i++ {
		l.entries = append(l.entries, usage.Entry{UserID: userID, CreatedAt: at})
	}
}

// Len returns the number of ledger entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of all entries.
func (l *Ledger) Entries() []usage.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.entries)
}

func (l *Ledger) Create(ctx context.Context, entry *usage.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *Ledger) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	times, err := l.CreatedSince(ctx, userID, since)
	return int64(len(times)), err
}

func (l *Ledger) CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return nil, l.Err
	}
	var out []time.Time
	for _, e := range l.entries {
		if e.UserID == userID && !e.CreatedAt.Before(since) {
			out = append(out, e.CreatedAt)
		}
	}
	return out, nil
}

func (l *Ledger) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := len(l.entries)
	l.entries = slices.DeleteFunc(l.entries, func(e usage.Entry) bool { return e.CreatedAt.Before(cutoff) })
	return int64(before - len(l.entries)), nil
}
