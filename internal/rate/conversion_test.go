package rate

import (
	"context"
	"testing"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToBaseAmount_RoundsHalfAwayFromZero(t *testing.T) {
	requireDecimal(t, "108.70", ToBaseAmount(dec("100"), dec("1.087"), 2))
	requireDecimal(t, "1.01", ToBaseAmount(dec("1.005"), dec("1"), 2))
	requireDecimal(t, "-1.01", ToBaseAmount(dec("-1.005"), dec("1"), 2))
	requireDecimal(t, "0", ToBaseAmount(decimal.Zero, dec("1.087"), 2))
}

func TestFromBaseAmount_UsesCurrencyPlaces(t *testing.T) {
	requireDecimal(t, "92", FromBaseAmount(dec("100"), dec("1.087"), 0))
	requireDecimal(t, "91.996", FromBaseAmount(dec("100"), dec("1.087"), 3))
}

func TestConversionEngine_ToBase(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	got, err := env.engine.ToBase(ctx, dec("100"), "EUR")
	require.NoError(t, err)
	requireDecimal(t, "108.70", got)

	got, err = env.engine.ToBase(ctx, dec("-100"), "EUR")
	require.NoError(t, err)
	requireDecimal(t, "-108.70", got)

	got, err = env.engine.ToBase(ctx, dec("12.345"), "USD")
	require.NoError(t, err)
	requireDecimal(t, "12.345", got)

	_, err = env.engine.ToBase(ctx, dec("1"), "JPY")
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}

func TestConversionEngine_FromBase(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	env.addCurrency(t, "JPY", "0.0067", 0)
	ctx := context.Background()

	got, err := env.engine.FromBase(ctx, dec("108.70"), "EUR")
	require.NoError(t, err)
	requireDecimal(t, "100", got)

	got, err = env.engine.FromBase(ctx, dec("10"), "JPY")
	require.NoError(t, err)
	requireDecimal(t, "1493", got)
}

func TestConversionEngine_RoundTripWithinOneUnit(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	env.addCurrency(t, "GBP", "1.2634", 2)
	ctx := context.Background()
	unit := dec("0.01")

	for _, code := range []string{"EUR", "GBP"} {
		for _, amount := range []string{"0.01", "1", "12.34", "99.99", "1234.56", "-7.77"} {
			x := dec(amount)
			base, err := env.engine.ToBase(ctx, x, code)
			require.NoError(t, err)
			back, err := env.engine.FromBase(ctx, base, code)
			require.NoError(t, err)
			require.Truef(t, back.Sub(x).Abs().LessThanOrEqual(unit), "%s %s came back as %s", amount, code, back)
		}
	}
}

func TestConversionEngine_InactiveCurrencyIsUnknown(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	_, err := env.service.Toggle(context.Background(), "EUR")
	require.NoError(t, err)

	_, err = env.engine.ToBase(context.Background(), dec("1"), "EUR")
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}

func TestConversionEngine_HistoricalRate(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	env.clock.Advance(time.Hour)
	_, err := env.store.ApplyUpdate(ctx, "EUR", dec("1.1"), string(domain.SourceCentralBank))
	require.NoError(t, err)

	got, err := env.engine.ToBaseAt(ctx, dec("100"), "EUR", t0.Add(time.Minute))
	require.NoError(t, err)
	requireDecimal(t, "108.70", got)

	got, err = env.engine.ToBaseAt(ctx, dec("100"), "EUR", env.clock.Now())
	require.NoError(t, err)
	requireDecimal(t, "110", got)

	got, err = env.engine.FromBaseAt(ctx, dec("110"), "EUR", env.clock.Now())
	require.NoError(t, err)
	requireDecimal(t, "100", got)

	_, err = env.engine.ToBaseAt(ctx, dec("100"), "EUR", t0.Add(-time.Hour))
	require.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestConversionEngine_Convert(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	env.addCurrency(t, "GBP", "1.25", 2)

	c, err := env.engine.Convert(context.Background(), dec("100"), "EUR", "GBP")
	require.NoError(t, err)
	// 100 EUR = 108.70 USD = 86.96 GBP
	requireDecimal(t, "86.96", c.Result)
	requireDecimal(t, "0.8696", c.Rate)

	c, err = env.engine.Convert(context.Background(), dec("100"), "USD", "EUR")
	require.NoError(t, err)
	requireDecimal(t, "92", c.Result)
}
