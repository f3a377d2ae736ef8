package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"persona-chat/internal/utils/platformerrors"
)

const (
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour
	monthDays   = 30
)

// Service provides quota and usage statistics over the ledger.
type Service struct {
	repo  Repository
	limit int64
	now   func() time.Time
}

// NewService creates a usage service enforcing dailyLimit messages per UTC day.
func NewService(repo Repository, dailyLimit int) *Service {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &Service{
		repo:  repo,
		limit: int64(dailyLimit),
		now:   time.Now,
	}
}

// WithClock replaces the time source. Used by tests that pin the UTC day.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DailyLimit returns the configured quota.
func (s *Service) DailyLimit() int64 {
	return s.limit
}

// DayStart returns the UTC midnight that opens the day containing t.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today reports the caller's quota position for the current UTC day. A user with no ledger rows
// has the full limit remaining.
func (s *Service) Today(ctx context.Context, userID string) (Snapshot, error) {
	start := DayStart(s.now())
	count, err := s.repo.CountSince(ctx, userID, start)
	if err != nil {
		return Snapshot{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read usage")
	}
	return s.snapshot(count, start), nil
}

func (s *Service) snapshot(count int64, dayStart time.Time) Snapshot {
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Snapshot{
		MessageCount: count,
		DailyLimit:   s.limit,
		Remaining:    remaining,
		ResetsAt:     dayStart.Add(24 * time.Hour),
	}
}

// Check gates a new turn. It returns RATE_LIMITED when the quota is spent and UNAVAILABLE when the
// ledger cannot be read; the snapshot is returned in both the allowed and the limited case.
func (s *Service) Check(ctx context.Context, userID string) (Snapshot, error) {
	snapshot, err := s.Today(ctx, userID)
	if err != nil {
		return Snapshot{}, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnavailable, "usage ledger unavailable", err, "4e2a8c6d-0b1f-4a3e-9c5d-7f1b3d5e7a66")
	}
	if snapshot.Exhausted() {
		return snapshot, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeRateLimited, "Daily message limit reached", nil, "8d0f2b4c-6e8a-4c1d-b3f5-9a1c3e5f7b77", map[string]any{
			"message_count": snapshot.MessageCount,
			"daily_limit":   snapshot.DailyLimit,
		})
	}
	return snapshot, nil
}

// Record appends a ledger entry for a persisted user message.
func (s *Service) Record(ctx context.Context, userID, conversationID, messageID string) error {
	entry := &Entry{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConversationID: conversationID,
		MessageID:      messageID,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record usage")
	}
	return nil
}

// Stats counts the caller's messages for today, the 7 days and the 30 days before today's start.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	todayStart := DayStart(s.now())
	weekAgo := todayStart.Add(-weekWindow)
	monthAgo := todayStart.Add(-monthWindow)

	createdAt, err := s.repo.CreatedSince(ctx, userID, monthAgo)
	if err != nil {
		return Stats{}, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read usage stats")
	}

	stats := Stats{
		MonthCount: int64(len(createdAt)),
		DailyLimit: s.limit,
		ResetsAt:   todayStart.Add(24 * time.Hour),
	}
	for _, ts := range createdAt {
		if !ts.Before(todayStart) {
			stats.TodayCount++
		}
		if !ts.Before(weekAgo) {
			stats.WeekCount++
		}
	}
	stats.DailyAverage = decimal.NewFromInt(stats.MonthCount).
		Div(decimal.NewFromInt(monthDays)).
		Round(2)
	return stats, nil
}

// PruneBefore deletes ledger rows older than cutoff and returns how many were removed.
func (s *Service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	deleted, err := s.repo.DeleteBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to prune usage ledger")
	}
	return deleted, nil
}

// QuotaFromError recovers the quota position carried by a RATE_LIMITED error returned from Check.
func QuotaFromError(err error) (Snapshot, bool) {
	var perr *platformerrors.PlatformError
	if !errors.As(err, &perr) || perr.Type != platformerrors.ErrorTypeRateLimited {
		return Snapshot{}, false
	}
	count, _ := perr.Context["message_count"].(int64)
	limit, _ := perr.Context["daily_limit"].(int64)
	return Snapshot{MessageCount: count, DailyLimit: limit, Remaining: 0}, true
}
