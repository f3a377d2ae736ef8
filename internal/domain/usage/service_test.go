package usage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain/usage"
	"persona-chat/internal/domain/usage/usagetest"
	"persona-chat/internal/utils/platformerrors"
)

var fixedNow = time.Date(2025, 5, 14, 15, 30, 0, 0, time.UTC)

func newService(ledger *usagetest.Ledger, limit int) *usage.Service {
	return usage.NewService(ledger, limit).WithClock(func() time.Time { return fixedNow })
}

func TestTodayWithoutRowsHasFullQuota(t *testing.T) {
	svc := newService(&usagetest.Ledger{}, 15)

	snapshot, err := svc.Today(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, usage.Snapshot{
		MessageCount: 0,
		DailyLimit:   15,
		Remaining:    15,
		ResetsAt:     time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
	}, snapshot)
}

func TestTodayIgnoresYesterdayAndOtherUsers(t *testing.T) {
	ledger := &usagetest.Ledger{}
	ledger.SeedN("user-1", 4, fixedNow.Add(-time.Hour))
	ledger.SeedN("user-1", 9, usage.DayStart(fixedNow).Add(-time.Second))
	ledger.SeedN("user-2", 7, fixedNow)
	svc := newService(ledger, 15)

	snapshot, err := svc.Today(context.Background(), "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 4, snapshot.MessageCount)
	assert.EqualValues(t, 11, snapshot.Remaining)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		seeded    int
		ledgerErr error
		wantType  platformerrors.ErrorType
		wantCount int64
	}{
		{name: "under limit", seeded: 14, wantCount: 14},
		{name: "at limit", seeded: 15, wantType: platformerrors.ErrorTypeRateLimited, wantCount: 15},
		{name: "over limit", seeded: 20, wantType: platformerrors.ErrorTypeRateLimited, wantCount: 20},
		{name: "ledger down", ledgerErr: errors.New("connection refused"), wantType: platformerrors.ErrorTypeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &usagetest.Ledger{Err: tt.ledgerErr}
			ledger.SeedN("u", tt.seeded, fixedNow)
			svc := newService(ledger, 15)

			snapshot, err := svc.Check(context.Background(), "u")
			if tt.wantType == "" {
				require.NoError(t, err)
				assert.EqualValues(t, tt.wantCount, snapshot.MessageCount)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantType, platformerrors.TypeOf(err))
			if tt.wantType == platformerrors.ErrorTypeRateLimited {
				assert.EqualValues(t, tt.wantCount, snapshot.MessageCount)
				assert.Zero(t, snapshot.Remaining)
			}
		})
	}
}

func TestStatsWindows(t *testing.T) {
	ledger := &usagetest.Ledger{}
	todayStart := usage.DayStart(fixedNow)
	ledger.SeedN("u", 3, fixedNow)
	ledger.SeedN("u", 2, todayStart.Add(-3*24*time.Hour))
	ledger.SeedN("u", 4, todayStart.Add(-7*24*time.Hour))
	ledger.SeedN("u", 5, todayStart.Add(-20*24*time.Hour))
	ledger.SeedN("u", 6, todayStart.Add(-31*24*time.Hour))
	svc := newService(ledger, 15)

	stats, err := svc.Stats(context.Background(), "u")
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TodayCount)
	assert.EqualValues(t, 9, stats.WeekCount)
	assert.EqualValues(t, 14, stats.MonthCount)
	assert.EqualValues(t, 15, stats.DailyLimit)
	assert.Equal(t, "0.47", stats.DailyAverage.StringFixed(2))
}

func TestRecordAndPrune(t *testing.T) {
	ledger := &usagetest.Ledger{}
	ledger.SeedN("u", 2, fixedNow.AddDate(0, 0, -45))
	svc := newService(ledger, 15)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, "u", "conv-1", "msg-1"))
	entries := ledger.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "msg-1", entries[2].MessageID)
	assert.Equal(t, fixedNow, entries[2].CreatedAt)

	deleted, err := svc.PruneBefore(ctx, fixedNow.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	assert.Equal(t, 1, ledger.Len())
}

func TestQuotaFromError(t *testing.T) {
	ledger := &usagetest.Ledger{}
	ledger.SeedN("u", 15, fixedNow)
	svc := newService(ledger, 15)

	_, err := svc.Check(context.Background(), "u")
	wrapped := platformerrors.AsError(context.Background(), platformerrors.LayerHandler, err, "chat")

	snapshot, ok := usage.QuotaFromError(wrapped)
	require.True(t, ok)
	assert.EqualValues(t, 15, snapshot.MessageCount)
	assert.EqualValues(t, 15, snapshot.DailyLimit)
	assert.Zero(t, snapshot.Remaining)

	_, ok = usage.QuotaFromError(errors.New("other"))
	assert.False(t, ok)
}
