package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/adapters/memory"
	"multicurrency/internal/domain"
	"multicurrency/internal/settings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testSettings() domain.Settings {
	return domain.Settings{
		BaseCurrency:              "USD",
		RateSource:                domain.SourceCentralBank,
		UpdateFrequency:           domain.FrequencyHourly,
		AutoUpdate:                true,
		RoundToDecimals:           2,
		AllowMultiCurrencyPayment: true,
		MaxDeviationPercent:       decimal.NewFromInt(10),
	}
}

type testEnv struct {
	db         *memory.DB
	saved      *memory.SettingsRepository
	clock      *clockwork.FakeClock
	settings   *settings.Holder
	currencies *memory.CurrencyRepository
	history    *memory.HistoryRepository
	payments   *memory.PaymentRepository
	store      *RateStore
	engine     *ConversionEngine
	recorder   *PaymentRecorder
	service    *CurrencyService
}

func newTestEnv(t *testing.T, set domain.Settings) *testEnv {
	t.Helper()
	db := memory.New()
	saved := memory.NewSettingsRepository(db)
	holder, err := settings.Load(context.Background(), saved, set)
	require.NoError(t, err)
	env := &testEnv{
		db:         db,
		saved:      saved,
		clock:      clockwork.NewFakeClockAt(t0),
		settings:   holder,
		currencies: memory.NewCurrencyRepository(db),
		history:    memory.NewHistoryRepository(db),
		payments:   memory.NewPaymentRepository(db),
	}
	env.store = NewRateStore(StoreDeps{
		Currencies: env.currencies,
		History:    env.history,
		Settings:   env.settings,
		Cache:      newMapCache(),
		Clock:      env.clock,
	})
	env.engine = NewConversionEngine(env.store, env.settings)
	env.recorder = NewPaymentRecorder(env.engine, env.payments, env.settings, nil, env.clock)
	env.service = NewCurrencyService(env.currencies, env.store, env.settings, env.clock)

	require.NoError(t, env.service.EnsureBase(context.Background()))
	return env
}

func (e *testEnv) addCurrency(t *testing.T, code, rate string, places int32) {
	t.Helper()
	_, err := e.service.Create(context.Background(), domain.Currency{
		Code:          code,
		Name:          code,
		Rate:          decimal.RequireFromString(rate),
		DecimalPlaces: places,
		IsActive:      true,
	})
	require.NoError(t, err)
}

func (e *testEnv) historyOf(t *testing.T, code string) []domain.HistoryEntry {
	t.Helper()
	page, err := e.store.ListHistory(context.Background(), domain.HistoryFilter{
		Currency: code,
		Order:    domain.OrderChronological,
		PerPage:  domain.MaxPerPage,
	})
	require.NoError(t, err)
	return page.Entries
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

// mapCache is a CurrencyCache without admission or eviction.
type mapCache struct {
	mu    sync.Mutex
	items map[string]domain.Currency
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]domain.Currency)}
}

func (c *mapCache) Get(code string) (domain.Currency, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[code]
	return v, ok
}

func (c *mapCache) Set(cur domain.Currency) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cur.Code] = cur
}

func (c *mapCache) Invalidate(codes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, code := range codes {
		delete(c.items, code)
	}
}

func (c *mapCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

func (c *mapCache) Close() {}

type MockRateProvider struct{ mock.Mock }

func (m *MockRateProvider) Name() string { return "mock" }

func (m *MockRateProvider) Fetch(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, base, targets)
	rates, _ := args.Get(0).(map[string]decimal.Decimal)
	return rates, args.Error(1)
}

type staticRegistry struct {
	provider adapters.RateProvider
}

func (r staticRegistry) For(domain.RateSource) (adapters.RateProvider, error) {
	return r.provider, nil
}

type MockCurrencyRepository struct{ mock.Mock }

func (m *MockCurrencyRepository) Get(ctx context.Context, code string) (domain.Currency, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(domain.Currency)
	return c, args.Error(1)
}

func (m *MockCurrencyRepository) List(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	args := m.Called(ctx, activeOnly)
	list, _ := args.Get(0).([]domain.Currency)
	return list, args.Error(1)
}

func (m *MockCurrencyRepository) Create(ctx context.Context, c domain.Currency) (domain.Currency, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(domain.Currency)
	return created, args.Error(1)
}

func (m *MockCurrencyRepository) UpdateDetails(ctx context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error) {
	args := m.Called(ctx, code, d)
	c, _ := args.Get(0).(domain.Currency)
	return c, args.Error(1)
}

func (m *MockCurrencyRepository) SetActive(ctx context.Context, code string, active bool) (domain.Currency, error) {
	args := m.Called(ctx, code, active)
	c, _ := args.Get(0).(domain.Currency)
	return c, args.Error(1)
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockCurrencyRepository) ApplyRate(ctx context.Context, change domain.RateChange, decide domain.DecideFunc) (domain.HistoryEntry, domain.Decision, error) {
	args := m.Called(ctx, change, decide)
	e, _ := args.Get(0).(domain.HistoryEntry)
	d, _ := args.Get(1).(domain.Decision)
	return e, d, args.Error(2)
}

func (m *MockCurrencyRepository) Rebase(ctx context.Context, next domain.Settings, at time.Time) error {
	return m.Called(ctx, next, at).Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishRateChanged(ctx context.Context, events ...domain.RateChangedEvent) error {
	return m.Called(ctx, events).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
