package memory

import (
	"context"
	"slices"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
)

type PaymentRepository struct {
	db *DB
}

// Save refuses a second reversal of the same payment.
func (r *PaymentRepository) Save(_ context.Context, p domain.CurrencyPayment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ReversalOf != nil {
		for _, other := range r.db.payments {
			if other.ReversalOf != nil && *other.ReversalOf == *p.ReversalOf {
				return domain.ErrPaymentReversed
			}
		}
	}
	r.db.payments[p.ID] = p
	return nil
}

func (r *PaymentRepository) Get(_ context.Context, id uuid.UUID) (domain.CurrencyPayment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.payments[id]
	if !ok {
		return domain.CurrencyPayment{}, domain.ErrPaymentNotFound
	}
	return p, nil
}

func (r *PaymentRepository) ListBySale(_ context.Context, saleID string) ([]domain.CurrencyPayment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	list := make([]domain.CurrencyPayment, 0)
	for _, p := range r.db.payments {
		if p.SaleID == saleID {
			list = append(list, p)
		}
	}
	slices.SortFunc(list, func(a, b domain.CurrencyPayment) int {
		return a.PaymentDate.Compare(b.PaymentDate)
	})
	return list, nil
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

type SettingsRepository struct {
	db *DB
}

func (r *SettingsRepository) Get(_ context.Context) (domain.Settings, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if r.db.settings == nil {
		return domain.Settings{}, domain.ErrSettingsNotFound
	}
	return *r.db.settings, nil
}

func (r *SettingsRepository) Save(_ context.Context, s domain.Settings) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.settings = &s
	return nil
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}
