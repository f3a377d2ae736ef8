package usage

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDailyLimit is the number of user messages a caller may send per UTC day.
const DefaultDailyLimit = 15

// Entry is one row of the usage ledger: a user message counted against the daily quota.
type Entry struct {
	ID             string
	UserID         string
	ConversationID string
	MessageID      string
	CreatedAt      time.Time
}

// Snapshot is the caller's quota position for the current UTC day.
type Snapshot struct {
	MessageCount int64     `json:"message_count"`
	DailyLimit   int64     `json:"daily_limit"`
	Remaining    int64     `json:"remaining"`
	ResetsAt     time.Time `json:"resets_at"`
}

// Exhausted reports whether no messages remain today.
func (s Snapshot) Exhausted() bool {
	return s.Remaining <= 0
}

// Stats aggregates the caller's history over rolling UTC-day windows.
type Stats struct {
	TodayCount   int64           `json:"today_count"`
	WeekCount    int64           `json:"week_count"`
	MonthCount   int64           `json:"month_count"`
	DailyLimit   int64           `json:"daily_limit"`
	DailyAverage decimal.Decimal `json:"daily_average"`
	ResetsAt     time.Time       `json:"resets_at"`
}
