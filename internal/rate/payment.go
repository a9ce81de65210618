package rate

import (
	"context"
	"errors"
	"fmt"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
	"multicurrency/internal/platform/metrics"
	"multicurrency/internal/settings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PaymentRecorder snapshots the rate at recording time. Stored payments are
// never recomputed.
type PaymentRecorder struct {
	engine   *ConversionEngine
	payments adapters.PaymentRepository
	settings *settings.Holder
	metrics  *metrics.Metrics
	clock    clockwork.Clock
}

func (r *PaymentRecorder) RecordPayment(ctx context.Context, saleID, code string, amount decimal.Decimal) (domain.CurrencyPayment, error) {
	if !amount.IsPositive() {
		return domain.CurrencyPayment{}, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidAmount, amount.String())
	}
	set := r.settings.Current()
	if code != set.BaseCurrency && !set.AllowMultiCurrencyPayment {
		return domain.CurrencyPayment{}, domain.ErrMultiCurrency
	}

	q, err := r.engine.Quote(ctx, amount, code)
	if err != nil {
		return domain.CurrencyPayment{}, err
	}

	payment := domain.CurrencyPayment{
		ID:             uuid.New(),
		SaleID:         saleID,
		Currency:       code,
		OriginalAmount: amount,
		RateUsed:       q.Rate,
		BaseAmount:     q.BaseAmount,
		PaymentDate:    r.clock.Now().UTC(),
	}
	if err = r.payments.Save(ctx, payment); err != nil {
		return domain.CurrencyPayment{}, fmt.Errorf("failed to save payment for sale %q: %w", saleID, err)
	}
	r.metrics.PaymentRecorded(code)
	logrus.WithFields(logrus.Fields{
		"sale_id":     saleID,
		"currency":    code,
		"amount":      amount.String(),
		"base_amount": payment.BaseAmount.String(),
	}).Info("Payment recorded")
	return payment, nil
}

// Reverse records a negated copy of a payment with the same rate snapshot.
func (r *PaymentRecorder) Reverse(ctx context.Context, id uuid.UUID) (domain.CurrencyPayment, error) {
	original, err := r.Get(ctx, id)
	if err != nil {
		return domain.CurrencyPayment{}, err
	}
	if original.ReversalOf != nil {
		return domain.CurrencyPayment{}, fmt.Errorf("%w: %s is itself a reversal", domain.ErrPaymentReversed, id)
	}
	siblings, err := r.payments.ListBySale(ctx, original.SaleID)
	if err != nil {
		return domain.CurrencyPayment{}, fmt.Errorf("failed to list payments for sale %q: %w", original.SaleID, err)
	}
	for _, p := range siblings {
		if p.ReversalOf != nil && *p.ReversalOf == id {
			return domain.CurrencyPayment{}, fmt.Errorf("%w: %s", domain.ErrPaymentReversed, id)
		}
	}

	reversal := domain.CurrencyPayment{
		ID:             uuid.New(),
		SaleID:         original.SaleID,
		Currency:       original.Currency,
		OriginalAmount: original.OriginalAmount.Neg(),
		RateUsed:       original.RateUsed,
		BaseAmount:     original.BaseAmount.Neg(),
		PaymentDate:    r.clock.Now().UTC(),
		ReversalOf:     &original.ID,
	}
	if err = r.payments.Save(ctx, reversal); err != nil {
		if errors.Is(err, domain.ErrPaymentReversed) {
			return domain.CurrencyPayment{}, fmt.Errorf("%w: %s", domain.ErrPaymentReversed, id)
		}
		return domain.CurrencyPayment{}, fmt.Errorf("failed to save reversal of %s: %w", id, err)
	}
	return reversal, nil
}

func (r *PaymentRecorder) Get(ctx context.Context, id uuid.UUID) (domain.CurrencyPayment, error) {
	p, err := r.payments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return domain.CurrencyPayment{}, err
		}
		return domain.CurrencyPayment{}, fmt.Errorf("failed to get payment %s: %w", id, err)
	}
	return p, nil
}

func (r *PaymentRecorder) ListBySale(ctx context.Context, saleID string) ([]domain.CurrencyPayment, error) {
	list, err := r.payments.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for sale %q: %w", saleID, err)
	}
	return list, nil
}

func NewPaymentRecorder(engine *ConversionEngine, payments adapters.PaymentRepository, settings *settings.Holder, m *metrics.Metrics, clock clockwork.Clock) *PaymentRecorder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PaymentRecorder{engine: engine, payments: payments, settings: settings, metrics: m, clock: clock}
}
