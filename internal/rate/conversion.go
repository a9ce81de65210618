package rate

import (
	"context"
	"fmt"
	"time"

	"multicurrency/internal/domain"
	"multicurrency/internal/settings"

	"github.com/shopspring/decimal"
)

// ToBaseAmount converts a foreign amount using a base-per-unit rate. Rounding
// is half away from zero.
func ToBaseAmount(amount, rate decimal.Decimal, places int32) decimal.Decimal {
	return amount.Mul(rate).Round(places)
}

// FromBaseAmount converts a base amount into the currency quoted by rate.
func FromBaseAmount(amount, rate decimal.Decimal, places int32) decimal.Decimal {
	return amount.DivRound(rate, places)
}

type rateSource interface {
	GetCurrency(ctx context.Context, code string) (domain.Currency, error)
	GetRateAt(ctx context.Context, code string, at time.Time) (decimal.Decimal, error)
}

// Quote is a conversion to base together with the rate it used.
type Quote struct {
	Currency   domain.Currency
	Rate       decimal.Decimal
	Amount     decimal.Decimal
	BaseAmount decimal.Decimal
}

type Conversion struct {
	From   string
	To     string
	Amount decimal.Decimal
	Result decimal.Decimal
	// Rate is units of To per 1 unit of From.
	Rate decimal.Decimal
}

type ConversionEngine struct {
	rates    rateSource
	settings *settings.Holder
}

// Quote converts amount of code to base with the current rate.
func (e *ConversionEngine) Quote(ctx context.Context, amount decimal.Decimal, code string) (Quote, error) {
	set := e.settings.Current()
	c, err := e.currency(ctx, code)
	if err != nil {
		return Quote{}, err
	}
	if code == set.BaseCurrency {
		return Quote{Currency: c, Rate: domain.One, Amount: amount, BaseAmount: amount}, nil
	}
	return Quote{
		Currency:   c,
		Rate:       c.Rate,
		Amount:     amount,
		BaseAmount: ToBaseAmount(amount, c.Rate, set.RoundToDecimals),
	}, nil
}

func (e *ConversionEngine) ToBase(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	q, err := e.Quote(ctx, amount, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return q.BaseAmount, nil
}

func (e *ConversionEngine) FromBase(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	c, err := e.currency(ctx, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if code == e.settings.Current().BaseCurrency {
		return amount, nil
	}
	return FromBaseAmount(amount, c.Rate, c.DecimalPlaces), nil
}

// ToBaseAt converts with the rate that was in effect at the given time.
func (e *ConversionEngine) ToBaseAt(ctx context.Context, amount decimal.Decimal, code string, at time.Time) (decimal.Decimal, error) {
	set := e.settings.Current()
	if _, err := e.currency(ctx, code); err != nil {
		return decimal.Decimal{}, err
	}
	if code == set.BaseCurrency {
		return amount, nil
	}
	r, err := e.rates.GetRateAt(ctx, code, at)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ToBaseAmount(amount, r, set.RoundToDecimals), nil
}

func (e *ConversionEngine) FromBaseAt(ctx context.Context, amount decimal.Decimal, code string, at time.Time) (decimal.Decimal, error) {
	c, err := e.currency(ctx, code)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if code == e.settings.Current().BaseCurrency {
		return amount, nil
	}
	r, err := e.rates.GetRateAt(ctx, code, at)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return FromBaseAmount(amount, r, c.DecimalPlaces), nil
}

// Convert goes from one currency to another through the base currency.
func (e *ConversionEngine) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (Conversion, error) {
	fromQuote, err := e.Quote(ctx, amount, from)
	if err != nil {
		return Conversion{}, err
	}
	result, err := e.FromBase(ctx, fromQuote.BaseAmount, to)
	if err != nil {
		return Conversion{}, err
	}
	toRate := domain.One
	if to != e.settings.Current().BaseCurrency {
		c, err := e.currency(ctx, to)
		if err != nil {
			return Conversion{}, err
		}
		toRate = c.Rate
	}
	return Conversion{
		From:   from,
		To:     to,
		Amount: amount,
		Result: result,
		Rate:   fromQuote.Rate.DivRound(toRate, domain.RatePlaces),
	}, nil
}

// currency resolves an active currency. Inactive currencies are not convertible.
func (e *ConversionEngine) currency(ctx context.Context, code string) (domain.Currency, error) {
	c, err := e.rates.GetCurrency(ctx, code)
	if err != nil {
		return domain.Currency{}, err
	}
	if !c.IsActive {
		return domain.Currency{}, fmt.Errorf("%w: %s is inactive", domain.ErrUnknownCurrency, code)
	}
	return c, nil
}

func NewConversionEngine(rates *RateStore, settings *settings.Holder) *ConversionEngine {
	return &ConversionEngine{rates: rates, settings: settings}
}
