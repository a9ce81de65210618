package cache

import (
	"testing"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func currency(code, rate string) domain.Currency {
	return domain.Currency{Code: code, Rate: decimal.RequireFromString(rate), DecimalPlaces: 2, IsActive: true}
}

func TestCurrencyCache_SetAndGet(t *testing.T) {
	c, err := NewCurrencyCache(128, time.Minute)
	require.NoError(t, err)
	defer c.Close()

	c.Set(currency("EUR", "1.087"))
	c.cache.Wait()

	got, ok := c.Get("EUR")
	require.True(t, ok)
	require.Equal(t, "EUR", got.Code)
	require.Equal(t, "1.087", got.Rate.String())
}

func TestCurrencyCache_GetMissWhenEmpty(t *testing.T) {
	c, err := NewCurrencyCache(64, 0)
	require.NoError(t, err)
	defer c.Close()

	got, ok := c.Get("EUR")
	require.False(t, ok)
	require.Empty(t, got.Code)
}

func TestCurrencyCache_InvalidateEvictsOnlySpecifiedCodes(t *testing.T) {
	c, err := NewCurrencyCache(256, 0)
	require.NoError(t, err)
	defer c.Close()

	c.Set(currency("EUR", "1.087"))
	c.Set(currency("GBP", "1.25"))
	c.Set(currency("JPY", "0.0067"))
	c.cache.Wait()

	c.Invalidate("EUR", "GBP")

	_, ok := c.Get("EUR")
	require.False(t, ok)
	_, ok = c.Get("GBP")
	require.False(t, ok)

	got, ok := c.Get("JPY")
	require.True(t, ok)
	require.Equal(t, "0.0067", got.Rate.String())
}

func TestCurrencyCache_Clear(t *testing.T) {
	c, err := NewCurrencyCache(64, 0)
	require.NoError(t, err)
	defer c.Close()

	c.Set(currency("EUR", "1.087"))
	c.cache.Wait()
	c.Clear()

	_, ok := c.Get("EUR")
	require.False(t, ok)
}

func TestCurrencyCache_EntriesExpire(t *testing.T) {
	c, err := NewCurrencyCache(64, 50*time.Millisecond)
	require.NoError(t, err)
	defer c.Close()

	c.Set(currency("EUR", "1.087"))
	c.cache.Wait()

	require.Eventually(t, func() bool {
		_, ok := c.Get("EUR")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewCurrencyCache_InvalidConfig(t *testing.T) {
	_, err := NewCurrencyCache(0, 0)
	require.Error(t, err)
}
