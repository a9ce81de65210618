package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"multicurrency/internal/domain"
)

type CurrencyRepository struct {
	db *DB
}

func (r *CurrencyRepository) Get(_ context.Context, code string) (domain.Currency, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	rec, ok := r.db.active(code)
	if !ok {
		return domain.Currency{}, domain.ErrUnknownCurrency
	}
	return rec.currency, nil
}

func (r *CurrencyRepository) List(_ context.Context, activeOnly bool) ([]domain.Currency, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	list := make([]domain.Currency, 0, len(r.db.currencies))
	for _, rec := range r.db.currencies {
		if rec.deleted || (activeOnly && !rec.currency.IsActive) {
			continue
		}
		list = append(list, rec.currency)
	}
	slices.SortFunc(list, func(a, b domain.Currency) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.Code, b.Code)
	})
	return list, nil
}

func (r *CurrencyRepository) Create(_ context.Context, c domain.Currency) (domain.Currency, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.active(c.Code); ok {
		return domain.Currency{}, domain.ErrCurrencyExists
	}
	at := c.CreatedAt.UTC()
	c.CreatedAt = at
	c.LastUpdated = &at
	r.db.currencies[c.Code] = &record{currency: c}
	r.db.append(domain.HistoryEntry{
		Currency:   c.Code,
		NewRate:    c.Rate,
		Source:     string(domain.SourceManual),
		RecordedAt: at,
	})
	return c, nil
}

func (r *CurrencyRepository) UpdateDetails(_ context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.active(code)
	if !ok {
		return domain.Currency{}, domain.ErrUnknownCurrency
	}
	rec.currency.Name = d.Name
	rec.currency.Symbol = d.Symbol
	rec.currency.DecimalPlaces = d.DecimalPlaces
	rec.currency.SortOrder = d.SortOrder
	return rec.currency, nil
}

func (r *CurrencyRepository) SetActive(_ context.Context, code string, active bool) (domain.Currency, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.active(code)
	if !ok {
		return domain.Currency{}, domain.ErrUnknownCurrency
	}
	rec.currency.IsActive = active
	return rec.currency, nil
}

func (r *CurrencyRepository) Delete(_ context.Context, code string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.active(code)
	if !ok {
		return domain.ErrUnknownCurrency
	}
	for _, p := range r.db.payments {
		if p.Currency == code {
			return domain.ErrCurrencyInUse
		}
	}
	rec.deleted = true
	return nil
}

func (r *CurrencyRepository) ApplyRate(_ context.Context, change domain.RateChange, decide domain.DecideFunc) (domain.HistoryEntry, domain.Decision, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	rec, ok := r.db.active(change.Code)
	if !ok {
		return domain.HistoryEntry{}, domain.Decision{}, domain.ErrUnknownCurrency
	}
	if set := r.db.settings; change.Base != "" && set != nil && set.BaseCurrency != change.Base {
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("%w: %s quoted against %s, base is %s",
			domain.ErrBaseChanged, change.Code, change.Base, set.BaseCurrency)
	}
	last := r.db.lastAccepted(change.Code)
	if last != nil && !last.NewRate.Equal(rec.currency.Rate) {
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("%w: %s rate %s differs from last history rate %s",
			domain.ErrInconsistentState, change.Code, rec.currency.Rate, last.NewRate)
	}

	decision := decide(rec.currency, last)
	old := rec.currency.Rate
	entry := domain.HistoryEntry{
		Currency:   change.Code,
		OldRate:    &old,
		NewRate:    change.Rate,
		Source:     change.Source,
		RecordedAt: change.At,
	}
	switch decision.Outcome {
	case domain.OutcomeAccept:
		at := change.At.UTC()
		rec.currency.Rate = change.Rate
		rec.currency.LastUpdated = &at
	case domain.OutcomeReject:
		entry.FailureReason = decision.Reason
	default:
		return domain.HistoryEntry{}, decision, nil
	}
	return r.db.append(entry), decision, nil
}

// Rebase re-expresses the rates of all live currencies against next.BaseCurrency
// and stores next as the settings, all under one lock.
func (r *CurrencyRepository) Rebase(_ context.Context, next domain.Settings, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	newBase := next.BaseCurrency
	base, ok := r.db.active(newBase)
	if !ok {
		return domain.ErrUnknownCurrency
	}
	factor := base.currency.Rate
	stamp := at.UTC()
	for code, rec := range r.db.currencies {
		if rec.deleted {
			continue
		}
		old := rec.currency.Rate
		next := old.DivRound(factor, domain.RatePlaces)
		if code == newBase {
			next = domain.One
		}
		rec.currency.Rate = next
		rec.currency.LastUpdated = &stamp
		r.db.append(domain.HistoryEntry{
			Currency:   code,
			OldRate:    &old,
			NewRate:    next,
			Source:     string(domain.SourceRebase),
			RecordedAt: stamp,
		})
	}
	r.db.settings = &next
	return nil
}

func NewCurrencyRepository(db *DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}
