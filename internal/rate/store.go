package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
	"multicurrency/internal/platform/metrics"
	"multicurrency/internal/settings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

// RateStore owns current rates and their history. ApplyUpdate is the only way
// a rate changes.
type RateStore struct {
	currencies adapters.CurrencyRepository
	history    adapters.HistoryRepository
	validator  *RateValidator
	settings   *settings.Holder
	cache      adapters.CurrencyCache
	publisher  adapters.EventPublisher
	metrics    *metrics.Metrics
	clock      clockwork.Clock

	// generation guards the cache against storing a value read before a commit.
	generation atomic.Uint64
	cacheMu    sync.Mutex

	mu     sync.Mutex
	halted map[string]error
}

// GetCurrency returns a registered currency, inactive ones included.
func (s *RateStore) GetCurrency(ctx context.Context, code string) (domain.Currency, error) {
	if s.cache != nil {
		if c, ok := s.cache.Get(code); ok {
			return c, nil
		}
	}
	gen := s.generation.Load()
	c, err := s.currencies.Get(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCurrency) {
			return domain.Currency{}, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
		}
		return domain.Currency{}, fmt.Errorf("failed to get currency %s: %w", code, err)
	}
	if s.cache != nil {
		s.cacheMu.Lock()
		if s.generation.Load() == gen {
			s.cache.Set(c)
		}
		s.cacheMu.Unlock()
	}
	return c, nil
}

func (s *RateStore) GetCurrentRate(ctx context.Context, code string) (decimal.Decimal, error) {
	c, err := s.GetCurrency(ctx, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if code == s.settings.Current().BaseCurrency {
		return domain.One, nil
	}
	return c.Rate, nil
}

// GetRateAt returns the rate that was in effect at the given time.
func (s *RateStore) GetRateAt(ctx context.Context, code string, at time.Time) (decimal.Decimal, error) {
	c, err := s.GetCurrency(ctx, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if code == s.settings.Current().BaseCurrency {
		return domain.One, nil
	}

	entry, err := s.history.RateAt(ctx, code, at)
	if err == nil {
		return entry.NewRate, nil
	}
	if !errors.Is(err, domain.ErrRateNotFound) {
		return decimal.Decimal{}, fmt.Errorf("failed to get rate for %s at %s: %w", code, at.Format(time.RFC3339), err)
	}
	if !c.CreatedAt.IsZero() && c.CreatedAt.After(at) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s did not exist at %s", domain.ErrRateNotFound, code, at.Format(time.RFC3339))
	}
	return c.Rate, nil
}

// ActiveRates lists active currencies in display order.
func (s *RateStore) ActiveRates(ctx context.Context) ([]domain.Currency, error) {
	list, err := s.currencies.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return list, nil
}

// ApplyUpdate validates rate against the current state and commits it together
// with a history entry. A rejected rate leaves the current rate untouched and
// is recorded as a failed attempt. A skipped rate writes nothing and returns
// ErrRateUnchanged.
func (s *RateStore) ApplyUpdate(ctx context.Context, code string, rate decimal.Decimal, source string) (domain.HistoryEntry, error) {
	return s.apply(ctx, s.settings.Current().BaseCurrency, code, rate, source)
}

// ApplyQuoted is ApplyUpdate for a rate quoted against base. It fails with
// ErrBaseChanged once the base currency is no longer base, so a fetch started
// before a rebase can't commit foreign rates.
func (s *RateStore) ApplyQuoted(ctx context.Context, base, code string, rate decimal.Decimal, source string) (domain.HistoryEntry, error) {
	return s.apply(ctx, base, code, rate, source)
}

func (s *RateStore) apply(ctx context.Context, base, code string, rate decimal.Decimal, source string) (domain.HistoryEntry, error) {
	if err := s.haltedErr(code); err != nil {
		return domain.HistoryEntry{}, err
	}

	set := s.settings.Current()
	if set.BaseCurrency != base {
		return domain.HistoryEntry{}, fmt.Errorf("%w: %s quoted against %s, base is %s", domain.ErrBaseChanged, code, base, set.BaseCurrency)
	}
	now := s.clock.Now().UTC()
	change := domain.RateChange{Code: code, Base: base, Rate: rate.Round(domain.RatePlaces), Source: source, At: now}

	entry, decision, err := s.currencies.ApplyRate(ctx, change, func(current domain.Currency, last *domain.HistoryEntry) domain.Decision {
		return s.validator.Validate(ValidationInput{
			Currency:            current,
			Candidate:           change.Rate,
			Source:              source,
			Last:                last,
			Now:                 now,
			Base:                set.BaseCurrency,
			MaxDeviationPercent: set.MaxDeviationPercent,
			HistoryContinuity:   set.HistoryContinuity,
			Window:              set.UpdateFrequency.Interval(),
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrInconsistentState) {
			s.halt(code, err)
		}
		if errors.Is(err, domain.ErrUnknownCurrency) {
			return domain.HistoryEntry{}, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to apply rate for %s: %w", code, err)
	}
	s.metrics.RateUpdate(decision.Outcome.String())

	fields := logrus.Fields{"currency": code, "rate": change.Rate.String(), "source": source}
	switch decision.Outcome {
	case domain.OutcomeReject:
		logrus.WithFields(fields).Warnf("Rate rejected: %s", decision.Reason)
		return entry, &domain.RejectionError{Code: code, Reason: decision.Reason}
	case domain.OutcomeSkip:
		logrus.WithFields(fields).Debugf("Rate skipped: %s", decision.Reason)
		return domain.HistoryEntry{}, fmt.Errorf("%w: %s", domain.ErrRateUnchanged, decision.Reason)
	}

	s.forget(code)
	logrus.WithFields(fields).Info("Rate updated")
	s.publish(ctx, set.BaseCurrency, entry)
	return entry, nil
}

// RecordFailure appends a failed attempt without touching the current rate.
func (s *RateStore) RecordFailure(ctx context.Context, code, source, reason string) (domain.HistoryEntry, error) {
	c, err := s.GetCurrency(ctx, code)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	current := c.Rate
	entry, err := s.history.Append(ctx, domain.HistoryEntry{
		Currency:      code,
		OldRate:       &current,
		NewRate:       current,
		Source:        source,
		RecordedAt:    s.clock.Now().UTC(),
		FailureReason: reason,
	})
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to record failure for %s: %w", code, err)
	}
	s.metrics.RateUpdate("failed")
	return entry, nil
}

func (s *RateStore) ListHistory(ctx context.Context, filter domain.HistoryFilter) (domain.HistoryPage, error) {
	page, err := s.history.List(ctx, filter.Normalize())
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("failed to list history: %w", err)
	}
	return page, nil
}

// Halted reports whether writes for code are stopped after an inconsistent state was detected.
func (s *RateStore) Halted(code string) bool {
	return s.haltedErr(code) != nil
}

// Resolve re-enables writes for code once an operator has repaired its state.
func (s *RateStore) Resolve(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.halted[code]
	delete(s.halted, code)
	if ok {
		s.forget(code)
		logrus.WithField("currency", code).Warn("Rate writes resumed")
	}
	return ok
}

func (s *RateStore) halt(code string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halted[code] = cause
	logrus.WithError(cause).WithField("currency", code).Error("Rate writes halted")
}

func (s *RateStore) haltedErr(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cause, ok := s.halted[code]; ok {
		return fmt.Errorf("%w: writes for %s halted: %v", domain.ErrInconsistentState, code, cause)
	}
	return nil
}

// forget drops cached state for codes, or everything when none are given.
func (s *RateStore) forget(codes ...string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if len(codes) == 0 {
		s.cache.Clear()
		return
	}
	s.cache.Invalidate(codes...)
}

func (s *RateStore) publish(ctx context.Context, base string, entry domain.HistoryEntry) {
	if s.publisher == nil {
		return
	}
	event := domain.RateChangedEvent{
		Currency:   entry.Currency,
		Base:       base,
		NewRate:    entry.NewRate.String(),
		Source:     entry.Source,
		RecordedAt: entry.RecordedAt,
	}
	if entry.OldRate != nil {
		event.OldRate = entry.OldRate.String()
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishRateChanged(pubCtx, event); err != nil {
		logrus.WithError(err).WithField("currency", entry.Currency).Warn("Rate change event wasn't published")
	}
}

// StoreDeps groups the collaborators of a RateStore. Cache, Publisher and Metrics are optional.
type StoreDeps struct {
	Currencies adapters.CurrencyRepository
	History    adapters.HistoryRepository
	Validator  *RateValidator
	Settings   *settings.Holder
	Cache      adapters.CurrencyCache
	Publisher  adapters.EventPublisher
	Metrics    *metrics.Metrics
	Clock      clockwork.Clock
}

func NewRateStore(deps StoreDeps) *RateStore {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Validator == nil {
		deps.Validator = NewRateValidator(0)
	}
	return &RateStore{
		currencies: deps.Currencies,
		history:    deps.History,
		validator:  deps.Validator,
		settings:   deps.Settings,
		cache:      deps.Cache,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
		halted:     make(map[string]error),
	}
}
