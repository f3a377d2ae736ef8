package usageres

import (
	"time"

	"github.com/shopspring/decimal"

	"persona-chat/internal/domain/usage"
)

// UsageResponse is today's quota position.
type UsageResponse struct {
	MessageCount int64     `json:"message_count"`
	DailyLimit   int64     `json:"daily_limit"`
	Remaining    int64     `json:"remaining"`
	ResetsAt     time.Time `json:"resets_at"`
}

// StatsResponse aggregates usage over today, the last 7 and the last 30 days.
type StatsResponse struct {
	TodayCount   int64           `json:"today_count"`
	WeekCount    int64           `json:"week_count"`
	MonthCount   int64           `json:"month_count"`
	DailyLimit   int64           `json:"daily_limit"`
	DailyAverage decimal.Decimal `json:"daily_average" swaggertype:"number"`
	ResetsAt     time.Time       `json:"resets_at"`
}

func NewUsageResponse(s usage.Snapshot) *UsageResponse {
	return &UsageResponse{
		MessageCount: s.MessageCount,
		DailyLimit:   s.DailyLimit,
		Remaining:    s.Remaining,
		ResetsAt:     s.ResetsAt.UTC(),
	}
}

func NewStatsResponse(s usage.Stats) *StatsResponse {
	return &StatsResponse{
		TodayCount:   s.TodayCount,
		WeekCount:    s.WeekCount,
		MonthCount:   s.MonthCount,
		DailyLimit:   s.DailyLimit,
		DailyAverage: s.DailyAverage,
		ResetsAt:     s.ResetsAt.UTC(),
	}
}
