package memory

import (
	"context"
	"slices"
	"time"

	"multicurrency/internal/domain"
)

type HistoryRepository struct {
	db *DB
}

func (r *HistoryRepository) Append(_ context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.db.append(entry), nil
}

func (r *HistoryRepository) RateAt(_ context.Context, code string, at time.Time) (domain.HistoryEntry, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var found *domain.HistoryEntry
	for i := range r.db.history {
		e := r.db.history[i]
		if e.Currency != code || e.Failed() || e.RecordedAt.After(at) {
			continue
		}
		if found == nil || !e.RecordedAt.Before(found.RecordedAt) {
			found = &e
		}
	}
	if found == nil {
		return domain.HistoryEntry{}, domain.ErrRateNotFound
	}
	return *found, nil
}

func (r *HistoryRepository) List(_ context.Context, filter domain.HistoryFilter) (domain.HistoryPage, error) {
	filter = filter.Normalize()

	r.db.mu.RLock()
	matched := make([]domain.HistoryEntry, 0)
	for _, e := range r.db.history {
		if filter.Currency != "" && e.Currency != filter.Currency {
			continue
		}
		if !filter.From.IsZero() && e.RecordedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.RecordedAt.Before(filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	r.db.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b domain.HistoryEntry) int {
		if c := a.RecordedAt.Compare(b.RecordedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	if filter.Order == domain.OrderNewestFirst {
		slices.Reverse(matched)
	}

	page := domain.HistoryPage{Total: len(matched), Page: filter.Page, PerPage: filter.PerPage}
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.PerPage, len(matched))
	page.Entries = slices.Clone(matched[start:end])
	return page, nil
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}
