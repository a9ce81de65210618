package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistoryEntry struct {
	ID            int64
	Currency      string
	OldRate       *decimal.Decimal
	NewRate       decimal.Decimal
	Source        string
	RecordedAt    time.Time
	FailureReason string
}

func (e HistoryEntry) Failed() bool { return e.FailureReason != "" }

type HistoryOrder string

const (
	OrderNewestFirst   HistoryOrder = "newest"
	OrderChronological HistoryOrder = "chronological"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 500
	MaxPage        = 1_000_000
)

// HistoryFilter selects a bounded window of history. Zero From/To leave the range open.
type HistoryFilter struct {
	Currency string
	From     time.Time
	To       time.Time
	Order    HistoryOrder
	Page     int
	PerPage  int
}

// Normalize fills defaults and clamps paging values. Page is capped at MaxPage
// so Offset cannot overflow.
func (f HistoryFilter) Normalize() HistoryFilter {
	if f.Order != OrderChronological {
		f.Order = OrderNewestFirst
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.PerPage < 1 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
	return f
}

func (f HistoryFilter) Offset() int { return (f.Page - 1) * f.PerPage }

type HistoryPage struct {
	Entries []HistoryEntry
	Total   int
	Page    int
	PerPage int
}

// RateChange is a candidate rate for one currency, quoted against Base.
// Repositories refuse it once the persisted base currency differs.
type RateChange struct {
	Code   string
	Base   string
	Rate   decimal.Decimal
	Source string
	At     time.Time
}

// RateChangedEvent is published after a rate change is committed.
type RateChangedEvent struct {
	Currency   string    `json:"currency"`
	Base       string    `json:"base"`
	OldRate    string    `json:"old_rate,omitempty"`
	NewRate    string    `json:"new_rate"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}
