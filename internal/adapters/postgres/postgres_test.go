package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"multicurrency/internal/adapters/postgres"
	"multicurrency/internal/domain"
	"multicurrency/internal/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgSetupOnce sync.Once

	pgContainer *tcpg.PostgresContainer
	pgConnStr   string

	t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgSetupOnce.Do(func() {
		startPostgres(t)
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, resetDatabase(ctx, pool))

	return pool
}

func startPostgres(t *testing.T) {
	ctx := context.Background()
	pg, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("postgres"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.Eventually(t, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	}, 15*time.Second, 500*time.Millisecond)

	require.NoError(t, db.Migrate(ctx, pool))

	pgContainer = pg
	pgConnStr = dsn
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `truncate table currency_payments, rate_history, currencies, currency_settings restart identity cascade`)
	return err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T, repo *postgres.CurrencyRepository, code, rate string, sortOrder int) {
	t.Helper()
	_, err := repo.Create(context.Background(), domain.Currency{
		Code:          code,
		Name:          code,
		Rate:          dec(rate),
		DecimalPlaces: 2,
		SortOrder:     sortOrder,
		IsActive:      true,
		CreatedAt:     t0,
	})
	require.NoError(t, err)
}

func accept(domain.Currency, *domain.HistoryEntry) domain.Decision { return domain.Accept() }

// ---------- CurrencyRepository tests ----------

func TestCurrencyRepository_Get_NotFound(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)

	_, err := repo.Get(context.Background(), "EUR")
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}

func TestCurrencyRepository_CreateAndGet(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	ctx := context.Background()

	seed(t, repo, "EUR", "1.087", 0)

	c, err := repo.Get(ctx, "EUR")
	require.NoError(t, err)
	require.True(t, dec("1.087").Equal(c.Rate))
	require.Equal(t, int32(2), c.DecimalPlaces)
	require.Equal(t, t0, c.CreatedAt)
	require.NotNil(t, c.LastUpdated)

	page, err := history.List(ctx, domain.HistoryFilter{Currency: "EUR"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Equal(t, string(domain.SourceManual), page.Entries[0].Source)
	require.Nil(t, page.Entries[0].OldRate)

	_, err = repo.Create(ctx, domain.Currency{Code: "EUR", Rate: dec("1.1"), CreatedAt: t0})
	require.ErrorIs(t, err, domain.ErrCurrencyExists)
}

func TestCurrencyRepository_ListOrderedBySortOrderThenCode(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()

	seed(t, repo, "USD", "1", 1)
	seed(t, repo, "GBP", "1.2", 0)
	seed(t, repo, "EUR", "1.087", 0)
	_, err := repo.SetActive(ctx, "GBP", false)
	require.NoError(t, err)

	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Equal(t, []string{"EUR", "GBP", "USD"}, []string{list[0].Code, list[1].Code, list[2].Code})

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
}

func TestCurrencyRepository_UpdateDetails(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)

	c, err := repo.UpdateDetails(ctx, "EUR", domain.CurrencyDetails{Name: "Euro", Symbol: "€", DecimalPlaces: 3, SortOrder: 5})
	require.NoError(t, err)
	require.Equal(t, "Euro", c.Name)
	require.Equal(t, "€", c.Symbol)
	require.Equal(t, int32(3), c.DecimalPlaces)
	require.Equal(t, 5, c.SortOrder)

	_, err = repo.UpdateDetails(ctx, "CHF", domain.CurrencyDetails{})
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}

func TestCurrencyRepository_DeleteRefusedWithPayments(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	payments := postgres.NewPaymentRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)
	seed(t, repo, "GBP", "1.2", 0)

	require.NoError(t, payments.Save(ctx, domain.CurrencyPayment{
		ID: uuid.New(), SaleID: "42", Currency: "EUR",
		OriginalAmount: dec("10"), RateUsed: dec("1.087"), BaseAmount: dec("10.87"), PaymentDate: t0,
	}))

	require.ErrorIs(t, repo.Delete(ctx, "EUR"), domain.ErrCurrencyInUse)
	require.NoError(t, repo.Delete(ctx, "GBP"))
	require.ErrorIs(t, repo.Delete(ctx, "GBP"), domain.ErrUnknownCurrency)
	_, err := repo.Get(ctx, "GBP")
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)

	// a deleted code can be registered again
	seed(t, repo, "GBP", "1.25", 0)
	c, err := repo.Get(ctx, "GBP")
	require.NoError(t, err)
	require.True(t, dec("1.25").Equal(c.Rate))
}

func TestCurrencyRepository_ApplyRate_Outcomes(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)

	var seenLast *domain.HistoryEntry
	entry, decision, err := repo.ApplyRate(ctx,
		domain.RateChange{Code: "EUR", Rate: dec("1.09"), Source: "ecb", At: t0.Add(time.Hour)},
		func(c domain.Currency, last *domain.HistoryEntry) domain.Decision {
			seenLast = last
			return domain.Accept()
		})
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeAccept, decision.Outcome)
	require.NotNil(t, seenLast)
	require.True(t, dec("1.087").Equal(seenLast.NewRate))
	require.True(t, dec("1.087").Equal(*entry.OldRate))
	require.NotZero(t, entry.ID)

	_, decision, err = repo.ApplyRate(ctx,
		domain.RateChange{Code: "EUR", Rate: dec("-5"), Source: "ecb", At: t0.Add(2 * time.Hour)},
		func(domain.Currency, *domain.HistoryEntry) domain.Decision { return domain.Reject("non-positive rate") })
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeReject, decision.Outcome)

	_, decision, err = repo.ApplyRate(ctx,
		domain.RateChange{Code: "EUR", Rate: dec("1.09"), Source: "ecb", At: t0.Add(3 * time.Hour)},
		func(domain.Currency, *domain.HistoryEntry) domain.Decision { return domain.Skip("duplicate") })
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeSkip, decision.Outcome)

	c, err := repo.Get(ctx, "EUR")
	require.NoError(t, err)
	require.True(t, dec("1.09").Equal(c.Rate))

	page, err := history.List(ctx, domain.HistoryFilter{Currency: "EUR", Order: domain.OrderChronological})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.False(t, page.Entries[1].Failed())
	require.True(t, page.Entries[2].Failed())
	require.Equal(t, "non-positive rate", page.Entries[2].FailureReason)

	_, _, err = repo.ApplyRate(ctx, domain.RateChange{Code: "CHF", Rate: dec("1"), At: t0}, accept)
	require.ErrorIs(t, err, domain.ErrUnknownCurrency)
}

func TestCurrencyRepository_ApplyRate_DetectsTornState(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)

	_, err := pool.Exec(ctx, `update currencies set rate = 2 where code = 'EUR'`)
	require.NoError(t, err)

	_, _, err = repo.ApplyRate(ctx, domain.RateChange{Code: "EUR", Rate: dec("1.09"), Source: "ecb", At: t0}, accept)
	require.ErrorIs(t, err, domain.ErrInconsistentState)
}

func TestCurrencyRepository_ApplyRate_SerializesWriters(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rate := decimal.NewFromFloat(1.1).Add(decimal.New(int64(i), -3))
			_, _, err := repo.ApplyRate(ctx, domain.RateChange{Code: "EUR", Rate: rate, Source: "manual", At: t0.Add(time.Minute)}, accept)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := repo.Get(ctx, "EUR")
	require.NoError(t, err)
	page, err := history.List(ctx, domain.HistoryFilter{Currency: "EUR"})
	require.NoError(t, err)
	require.Equal(t, 11, page.Total)
	// newest entry first, ties broken by id
	require.True(t, page.Entries[0].NewRate.Equal(c.Rate))
}

func TestCurrencyRepository_Rebase(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	settings := postgres.NewSettingsRepository(pool)
	ctx := context.Background()
	require.NoError(t, settings.Save(ctx, domain.Settings{BaseCurrency: "USD", RateSource: domain.SourceManual, UpdateFrequency: domain.FrequencyManual, MaxDeviationPercent: dec("10")}))
	seed(t, repo, "USD", "1", 0)
	seed(t, repo, "EUR", "0.92", 0)
	seed(t, repo, "GBP", "1.25", 0)
	require.NoError(t, repo.Delete(ctx, "GBP"))

	next := domain.Settings{BaseCurrency: "EUR", RateSource: domain.SourceManual, UpdateFrequency: domain.FrequencyManual, MaxDeviationPercent: dec("10")}
	require.NoError(t, repo.Rebase(ctx, next, t0.Add(time.Hour)))

	eur, err := repo.Get(ctx, "EUR")
	require.NoError(t, err)
	require.True(t, domain.One.Equal(eur.Rate))

	usd, err := repo.Get(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, "1.0869565217", usd.Rate.String())

	saved, err := settings.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", saved.BaseCurrency)

	// deleted currencies keep their rate and get no rebase row
	var gbpRate string
	var gbpRows int
	require.NoError(t, pool.QueryRow(ctx, `select rate::text from currencies where code = 'GBP'`).Scan(&gbpRate))
	require.NoError(t, pool.QueryRow(ctx, `select count(*) from rate_history where currency = 'GBP'`).Scan(&gbpRows))
	require.True(t, dec("1.25").Equal(dec(gbpRate)))
	require.Equal(t, 1, gbpRows)

	// history of every currency stays consistent with its rate
	_, _, err = repo.ApplyRate(ctx, domain.RateChange{Code: "USD", Base: "EUR", Rate: dec("1.09"), Source: "ecb", At: t0.Add(2 * time.Hour)}, accept)
	require.NoError(t, err)

	require.ErrorIs(t, repo.Rebase(ctx, domain.Settings{BaseCurrency: "CHF"}, t0), domain.ErrUnknownCurrency)
	saved, err = settings.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", saved.BaseCurrency)
}

func TestCurrencyRepository_ApplyRate_RefusesStaleBase(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()
	require.NoError(t, postgres.NewSettingsRepository(pool).Save(ctx, domain.Settings{BaseCurrency: "EUR", RateSource: domain.SourceManual, UpdateFrequency: domain.FrequencyManual, MaxDeviationPercent: dec("10")}))
	seed(t, repo, "EUR", "1", 0)
	seed(t, repo, "GBP", "1.15", 0)

	_, _, err := repo.ApplyRate(ctx, domain.RateChange{Code: "GBP", Base: "USD", Rate: dec("1.27"), Source: "ecb", At: t0.Add(time.Hour)}, accept)
	require.ErrorIs(t, err, domain.ErrBaseChanged)

	gbp, err := repo.Get(ctx, "GBP")
	require.NoError(t, err)
	require.Equal(t, "1.15", gbp.Rate.String())
}

// ---------- HistoryRepository tests ----------

func TestHistoryRepository_ListPagingAndOrder(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1", 0)
	seed(t, repo, "GBP", "1", 0)

	for i := 1; i <= 5; i++ {
		_, err := history.Append(ctx, domain.HistoryEntry{
			Currency: "EUR", NewRate: dec("1"), Source: "ecb", RecordedAt: t0.Add(time.Duration(i) * time.Hour), FailureReason: "timeout",
		})
		require.NoError(t, err)
	}

	page, err := history.List(ctx, domain.HistoryFilter{Currency: "EUR", Page: 1, PerPage: 2})
	require.NoError(t, err)
	require.Equal(t, 6, page.Total)
	require.Len(t, page.Entries, 2)
	require.Equal(t, t0.Add(5*time.Hour), page.Entries[0].RecordedAt)

	page, err = history.List(ctx, domain.HistoryFilter{Currency: "EUR", Page: 2, PerPage: 4, Order: domain.OrderChronological})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	require.Equal(t, t0.Add(4*time.Hour), page.Entries[0].RecordedAt)

	page, err = history.List(ctx, domain.HistoryFilter{From: t0.Add(2 * time.Hour), To: t0.Add(4 * time.Hour)})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	page, err = history.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)

	page, err = history.List(ctx, domain.HistoryFilter{Page: 184467440737095518, PerPage: 50})
	require.NoError(t, err)
	require.Equal(t, 7, page.Total)
	require.Empty(t, page.Entries)
}

func TestHistoryRepository_RateAtSkipsFailedEntries(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	ctx := context.Background()
	seed(t, repo, "EUR", "1.087", 0)

	_, _, err := repo.ApplyRate(ctx, domain.RateChange{Code: "EUR", Rate: dec("1.09"), Source: "ecb", At: t0.Add(time.Hour)}, accept)
	require.NoError(t, err)
	_, err = history.Append(ctx, domain.HistoryEntry{Currency: "EUR", NewRate: dec("1.09"), Source: "ecb", RecordedAt: t0.Add(2 * time.Hour), FailureReason: "timeout"})
	require.NoError(t, err)

	e, err := history.RateAt(ctx, "EUR", t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.True(t, dec("1.087").Equal(e.NewRate))

	e, err = history.RateAt(ctx, "EUR", t0.Add(3*time.Hour))
	require.NoError(t, err)
	require.True(t, dec("1.09").Equal(e.NewRate))
	require.False(t, e.Failed())

	_, err = history.RateAt(ctx, "EUR", t0.Add(-time.Minute))
	require.ErrorIs(t, err, domain.ErrRateNotFound)
}

// ---------- PaymentRepository tests ----------

func TestPaymentRepository_SaveGetList(t *testing.T) {
	pool := setupPostgres(t)
	seed(t, postgres.NewCurrencyRepository(pool), "EUR", "1.087", 0)
	repo := postgres.NewPaymentRepository(pool)
	ctx := context.Background()

	p := domain.CurrencyPayment{
		ID: uuid.New(), SaleID: "sale-1", Currency: "EUR",
		OriginalAmount: dec("50"), RateUsed: dec("1.087"), BaseAmount: dec("54.35"), PaymentDate: t0,
	}
	require.NoError(t, repo.Save(ctx, p))

	rev := p
	rev.ID = uuid.New()
	rev.OriginalAmount = dec("-50")
	rev.BaseAmount = dec("-54.35")
	rev.PaymentDate = t0.Add(time.Minute)
	rev.ReversalOf = &p.ID
	require.NoError(t, repo.Save(ctx, rev))

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "sale-1", got.SaleID)
	require.Equal(t, "54.35", got.BaseAmount.String())
	require.Equal(t, "1.087", got.RateUsed.String())
	require.Equal(t, t0, got.PaymentDate)
	require.Nil(t, got.ReversalOf)

	list, err := repo.ListBySale(ctx, "sale-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[1].ReversalOf)
	require.Equal(t, p.ID, *list[1].ReversalOf)

	again := rev
	again.ID = uuid.New()
	require.ErrorIs(t, repo.Save(ctx, again), domain.ErrPaymentReversed)

	_, err = repo.Get(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

// ---------- SettingsRepository tests ----------

func TestSettingsRepository_SaveAndGet(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewSettingsRepository(pool)
	ctx := context.Background()

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, domain.ErrSettingsNotFound)

	s := domain.Settings{
		BaseCurrency:        "USD",
		RateSource:          domain.SourceCentralBank,
		UpdateFrequency:     domain.FrequencyDaily,
		AutoUpdate:          true,
		RoundToDecimals:     2,
		MaxDeviationPercent: dec("10"),
	}
	require.NoError(t, repo.Save(ctx, s))

	s.BaseCurrency = "EUR"
	s.HistoryContinuity = true
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "EUR", got.BaseCurrency)
	require.Equal(t, domain.SourceCentralBank, got.RateSource)
	require.True(t, got.HistoryContinuity)
	require.True(t, dec("10").Equal(got.MaxDeviationPercent))
}

func TestRepositories_CanceledContext(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)

	// Use a canceled context to force an error path distinct from ErrUnknownCurrency.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Get(ctx, "EUR")
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrUnknownCurrency)
}
