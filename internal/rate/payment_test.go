package rate

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRecorder_SnapshotsRate(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	p, err := env.recorder.RecordPayment(ctx, "sale-1", "EUR", dec("50"))
	require.NoError(t, err)
	require.Equal(t, "sale-1", p.SaleID)
	requireDecimal(t, "50", p.OriginalAmount)
	requireDecimal(t, "1.087", p.RateUsed)
	requireDecimal(t, "54.35", p.BaseAmount)
	require.Equal(t, t0, p.PaymentDate)

	// a later rate change doesn't touch recorded payments
	env.clock.Advance(time.Hour)
	_, err = env.store.ApplyUpdate(ctx, "EUR", dec("1.1"), string(domain.SourceCentralBank))
	require.NoError(t, err)

	stored, err := env.recorder.Get(ctx, p.ID)
	require.NoError(t, err)
	requireDecimal(t, "1.087", stored.RateUsed)
	requireDecimal(t, "54.35", stored.BaseAmount)

	next, err := env.recorder.RecordPayment(ctx, "sale-1", "EUR", dec("50"))
	require.NoError(t, err)
	requireDecimal(t, "55", next.BaseAmount)

	list, err := env.recorder.ListBySale(ctx, "sale-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestPaymentRecorder_InvalidInput(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	for _, amount := range []string{"0", "-1"} {
		_, err := env.recorder.RecordPayment(ctx, "sale-1", "EUR", dec(amount))
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	}

	_, err := env.recorder.RecordPayment(ctx, "sale-1", "CHF", dec("10"))
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)

	list, err := env.recorder.ListBySale(ctx, "sale-1")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestPaymentRecorder_MultiCurrencyDisabled(t *testing.T) {
	set := testSettings()
	set.AllowMultiCurrencyPayment = false
	env := newTestEnv(t, set)
	env.addCurrency(t, "EUR", "1.087", 2)

	_, err := env.recorder.RecordPayment(context.Background(), "sale-1", "EUR", dec("10"))
	require.ErrorIs(t, err, domain.ErrMultiCurrency)

	p, err := env.recorder.RecordPayment(context.Background(), "sale-1", "USD", dec("10"))
	require.NoError(t, err)
	requireDecimal(t, "10", p.BaseAmount)
	requireDecimal(t, "1", p.RateUsed)
}

func TestPaymentRecorder_Reverse(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	p, err := env.recorder.RecordPayment(ctx, "sale-7", "EUR", dec("50"))
	require.NoError(t, err)

	env.clock.Advance(time.Hour)
	_, err = env.store.ApplyUpdate(ctx, "EUR", dec("1.1"), string(domain.SourceCentralBank))
	require.NoError(t, err)

	rev, err := env.recorder.Reverse(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, rev.ReversalOf)
	require.Equal(t, p.ID, *rev.ReversalOf)
	requireDecimal(t, "-50", rev.OriginalAmount)
	requireDecimal(t, "-54.35", rev.BaseAmount)
	requireDecimal(t, "1.087", rev.RateUsed)

	_, err = env.recorder.Reverse(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrPaymentReversed)
	_, err = env.recorder.Reverse(ctx, rev.ID)
	require.ErrorIs(t, err, domain.ErrPaymentReversed)

	_, err = env.recorder.Reverse(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestPaymentRecorder_ConcurrentSales(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	sales := []string{"a", "b", "c", "d"}
	for _, sale := range sales {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := env.recorder.RecordPayment(ctx, sale, "EUR", dec("50"))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	for _, sale := range sales {
		list, err := env.recorder.ListBySale(ctx, sale)
		require.NoError(t, err)
		require.Len(t, list, 10)
	}
}

func TestPaymentRecorder_ConcurrentReversalsRecordOne(t *testing.T) {
	env := newTestEnv(t, testSettings())
	env.addCurrency(t, "EUR", "1.087", 2)
	ctx := context.Background()

	p, err := env.recorder.RecordPayment(ctx, "sale-9", "EUR", dec("50"))
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.recorder.Reverse(ctx, p.ID)
			if err == nil {
				succeeded.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrPaymentReversed)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded.Load())
	list, err := env.recorder.ListBySale(ctx, "sale-9")
	require.NoError(t, err)
	require.Len(t, list, 2)
}
