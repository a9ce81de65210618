package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
	"multicurrency/internal/settings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxDecimalPlaces = 6

var (
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidSettings = errors.New("invalid settings")
)

// CurrencyService manages the tracked currency set and the instance settings.
type CurrencyService struct {
	currencies adapters.CurrencyRepository
	store      *RateStore
	settings   *settings.Holder
	clock      clockwork.Clock
}

func (s *CurrencyService) List(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	list, err := s.currencies.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return list, nil
}

func (s *CurrencyService) Get(ctx context.Context, code string) (domain.Currency, error) {
	return s.store.GetCurrency(ctx, code)
}

// Create registers a currency and records its initial rate as a manual history entry.
func (s *CurrencyService) Create(ctx context.Context, c domain.Currency) (domain.Currency, error) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if !domain.IsCurrencyCode(c.Code) {
		return domain.Currency{}, fmt.Errorf("%w: code %q", ErrInvalidCurrency, c.Code)
	}
	if c.DecimalPlaces < 0 || c.DecimalPlaces > maxDecimalPlaces {
		return domain.Currency{}, fmt.Errorf("%w: decimal places must be between 0 and %d", ErrInvalidCurrency, maxDecimalPlaces)
	}
	if c.Code == s.settings.Current().BaseCurrency {
		c.Rate = domain.One
	}
	if !c.Rate.IsPositive() {
		return domain.Currency{}, fmt.Errorf("%w: %s", domain.ErrInvalidAmount, ReasonNonPositive)
	}
	c.Rate = c.Rate.Round(domain.RatePlaces)
	c.CreatedAt = s.clock.Now().UTC()

	created, err := s.currencies.Create(ctx, c)
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyExists) {
			return domain.Currency{}, fmt.Errorf("%w: %s", domain.ErrCurrencyExists, c.Code)
		}
		return domain.Currency{}, fmt.Errorf("failed to create currency %s: %w", c.Code, err)
	}
	s.store.forget(c.Code)
	logrus.WithFields(logrus.Fields{"currency": c.Code, "rate": c.Rate.String()}).Info("Currency created")
	return created, nil
}

// EnsureBase makes sure the configured base currency is registered.
func (s *CurrencyService) EnsureBase(ctx context.Context) error {
	base := s.settings.Current().BaseCurrency
	_, err := s.currencies.Get(ctx, base)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUnknownCurrency) {
		return fmt.Errorf("failed to check base currency %s: %w", base, err)
	}
	_, err = s.Create(ctx, domain.Currency{Code: base, Name: base, Symbol: base, DecimalPlaces: 2, IsActive: true})
	return err
}

func (s *CurrencyService) UpdateDetails(ctx context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error) {
	if d.DecimalPlaces < 0 || d.DecimalPlaces > maxDecimalPlaces {
		return domain.Currency{}, fmt.Errorf("%w: decimal places must be between 0 and %d", ErrInvalidCurrency, maxDecimalPlaces)
	}
	c, err := s.currencies.UpdateDetails(ctx, code, d)
	if err != nil {
		return domain.Currency{}, s.wrap(code, "update", err)
	}
	s.store.forget(code)
	return c, nil
}

// SetRate applies an operator-entered rate.
func (s *CurrencyService) SetRate(ctx context.Context, code string, rate decimal.Decimal) (domain.HistoryEntry, error) {
	return s.store.ApplyUpdate(ctx, code, rate, string(domain.SourceManual))
}

func (s *CurrencyService) Toggle(ctx context.Context, code string) (domain.Currency, error) {
	c, err := s.currencies.Get(ctx, code)
	if err != nil {
		return domain.Currency{}, s.wrap(code, "toggle", err)
	}
	if c.IsActive && code == s.settings.Current().BaseCurrency {
		return domain.Currency{}, fmt.Errorf("%w: cannot deactivate %s", domain.ErrBaseCurrency, code)
	}
	c, err = s.currencies.SetActive(ctx, code, !c.IsActive)
	if err != nil {
		return domain.Currency{}, s.wrap(code, "toggle", err)
	}
	s.store.forget(code)
	return c, nil
}

func (s *CurrencyService) Delete(ctx context.Context, code string) error {
	if code == s.settings.Current().BaseCurrency {
		return fmt.Errorf("%w: cannot delete %s", domain.ErrBaseCurrency, code)
	}
	if err := s.currencies.Delete(ctx, code); err != nil {
		return s.wrap(code, "delete", err)
	}
	s.store.forget(code)
	logrus.WithField("currency", code).Info("Currency deleted")
	return nil
}

func (s *CurrencyService) Settings() domain.Settings {
	return s.settings.Current()
}

// UpdateSettings persists new settings. Changing the base currency re-expresses
// every rate against the new base and stores the settings in one write.
func (s *CurrencyService) UpdateSettings(ctx context.Context, next domain.Settings) (domain.Settings, error) {
	next.BaseCurrency = strings.ToUpper(strings.TrimSpace(next.BaseCurrency))
	if err := next.Validate(); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	current := s.settings.Current()
	if next.BaseCurrency == current.BaseCurrency {
		if err := s.settings.Update(ctx, next); err != nil {
			return domain.Settings{}, err
		}
		return next, nil
	}

	base, err := s.currencies.Get(ctx, next.BaseCurrency)
	if err != nil {
		return domain.Settings{}, s.wrap(next.BaseCurrency, "rebase to", err)
	}
	if !base.IsActive {
		return domain.Settings{}, fmt.Errorf("%w: %s is inactive", domain.ErrUnknownCurrency, next.BaseCurrency)
	}
	if err = s.currencies.Rebase(ctx, next, s.clock.Now().UTC()); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to rebase rates to %s: %w", next.BaseCurrency, err)
	}
	s.settings.Apply(next)
	s.store.forget()
	logrus.WithFields(logrus.Fields{"from": current.BaseCurrency, "to": next.BaseCurrency}).Warn("Base currency changed, rates rebased")
	return next, nil
}

// ReloadSettings picks up settings changed outside this instance.
func (s *CurrencyService) ReloadSettings(ctx context.Context) (domain.Settings, error) {
	if err := s.settings.Reload(ctx); err != nil {
		return domain.Settings{}, err
	}
	s.store.forget()
	return s.settings.Current(), nil
}

// Resolve re-enables rate writes for a currency halted on inconsistent state.
func (s *CurrencyService) Resolve(code string) bool {
	return s.store.Resolve(code)
}

func (s *CurrencyService) wrap(code, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownCurrency):
		return fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
	case errors.Is(err, domain.ErrCurrencyInUse):
		return fmt.Errorf("%w: %s", domain.ErrCurrencyInUse, code)
	default:
		return fmt.Errorf("failed to %s currency %s: %w", op, code, err)
	}
}

func NewCurrencyService(currencies adapters.CurrencyRepository, store *RateStore, settings *settings.Holder, clock clockwork.Clock) *CurrencyService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CurrencyService{currencies: currencies, store: store, settings: settings, clock: clock}
}
