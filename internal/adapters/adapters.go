package adapters

import (
	"context"
	"time"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RateProvider interface {
	Name() string
	Fetch(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error)
}

type CurrencyRepository interface {
	Get(ctx context.Context, code string) (domain.Currency, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Currency, error)
	Create(ctx context.Context, c domain.Currency) (domain.Currency, error)
	UpdateDetails(ctx context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error)
	SetActive(ctx context.Context, code string, active bool) (domain.Currency, error)
	Delete(ctx context.Context, code string) error
	// ApplyRate runs decide against the locked currency row and persists the
	// outcome in the same transaction.
	ApplyRate(ctx context.Context, change domain.RateChange, decide domain.DecideFunc) (domain.HistoryEntry, domain.Decision, error)
	// Rebase re-expresses every live rate relative to next.BaseCurrency and
	// persists next as the settings in the same transaction.
	Rebase(ctx context.Context, next domain.Settings, at time.Time) error
}

type HistoryRepository interface {
	Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error)
	RateAt(ctx context.Context, code string, at time.Time) (domain.HistoryEntry, error)
	List(ctx context.Context, filter domain.HistoryFilter) (domain.HistoryPage, error)
}

type PaymentRepository interface {
	Save(ctx context.Context, p domain.CurrencyPayment) error
	Get(ctx context.Context, id uuid.UUID) (domain.CurrencyPayment, error)
	ListBySale(ctx context.Context, saleID string) ([]domain.CurrencyPayment, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, s domain.Settings) error
}

type ProviderRegistry interface {
	For(source domain.RateSource) (RateProvider, error)
}

type CurrencyCache interface {
	Get(code string) (domain.Currency, bool)
	Set(c domain.Currency)
	Invalidate(codes ...string)
	Clear()
	Close()
}

type EventPublisher interface {
	PublishRateChanged(ctx context.Context, events ...domain.RateChangedEvent) error
	Close() error
}
