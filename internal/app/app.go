package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/adapters/cache"
	"multicurrency/internal/adapters/kafka"
	"multicurrency/internal/adapters/memory"
	"multicurrency/internal/adapters/postgres"
	"multicurrency/internal/adapters/provider"
	"multicurrency/internal/api"
	"multicurrency/internal/config"
	"multicurrency/internal/platform/db"
	httpserver "multicurrency/internal/platform/http"
	"multicurrency/internal/platform/metrics"
	"multicurrency/internal/rate"
	"multicurrency/internal/rate/handler"
	"multicurrency/internal/settings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const startupTimeout = 10 * time.Second

// components is the wired application without its HTTP surface.
type components struct {
	cfg       *config.AppConfig
	registry  *prometheus.Registry
	store     *rate.RateStore
	engine    *rate.ConversionEngine
	recorder  *rate.PaymentRecorder
	service   *rate.CurrencyService
	scheduler *rate.UpdateScheduler

	closers []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

type repositories struct {
	currencies adapters.CurrencyRepository
	history    adapters.HistoryRepository
	payments   adapters.PaymentRepository
	settings   adapters.SettingsRepository
}

// Run wires the application components, starts HTTP server and scheduler
func Run(configPath string) error {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := build(ctx, appCfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// Ensure scheduler stops before storage closes
	defer func() {
		if shutDownErr := c.scheduler.Shutdown(); shutDownErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
		}
	}()
	if startErr := c.scheduler.Start(ctx); startErr != nil {
		logrus.WithError(startErr).Error("Failed to start scheduler")
		return startErr
	}
	logrus.Info("✅ Scheduler activation successful")

	// Handlers and router
	rateHandler := handler.NewHandler(handler.Deps{
		Scheduler:  c.scheduler,
		Rates:      c.store,
		Converter:  c.engine,
		Payments:   c.recorder,
		Currencies: c.service,
	})
	router := api.NewRouter(rateHandler, c.registry)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}

// RunUpdateOnce runs a single update cycle for scope, or for every active
// currency when scope is empty, and returns its report.
func RunUpdateOnce(configPath, scope string) (rate.UpdateResult, error) {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return rate.UpdateResult{}, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := build(ctx, appCfg)
	if err != nil {
		return rate.UpdateResult{}, err
	}
	defer c.Close()

	return c.scheduler.Trigger(ctx, strings.ToUpper(strings.TrimSpace(scope)))
}

// RunMigrations applies pending schema migrations and exits.
func RunMigrations(configPath string) error {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if appCfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("migrations need the %s storage driver, got %s", config.StoragePostgres, appCfg.Storage.Driver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.CreatePoolAndPing(ctx, appCfg.DbServer)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err = db.Migrate(ctx, pool); err != nil {
		return err
	}
	logrus.Info("✅ Migrations applied")
	return nil
}

func loadConfig(path string) (*config.AppConfig, error) {
	appCfg, err := config.Init(path)
	if err != nil {
		return nil, err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	if parsedLvl, parseErr := logrus.ParseLevel(appCfg.Logging.Level); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")
	return appCfg, nil
}

func build(ctx context.Context, appCfg *config.AppConfig) (_ *components, err error) {
	c := &components{cfg: appCfg}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	defaults, err := appCfg.Currency.Settings()
	if err != nil {
		return nil, err
	}

	// Bounded context for startup operations (DB connect, initial reads)
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	repos, err := c.openStorage(startupCtx)
	if err != nil {
		return nil, err
	}

	holder, err := settings.Load(startupCtx, repos.settings, defaults)
	if err != nil {
		logrus.WithError(err).Error("Failed to load settings")
		return nil, err
	}
	logrus.WithField("base", holder.Current().BaseCurrency).Info("✅ Settings loaded")

	currencyCache, err := cache.NewCurrencyCache(appCfg.Cache.MaxItems, time.Duration(appCfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create currency cache: %w", err)
	}
	c.closers = append(c.closers, currencyCache.Close)

	var publisher adapters.EventPublisher = kafka.Nop{}
	if len(appCfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewPublisher(appCfg.Kafka.Brokers, appCfg.Kafka.Topic)
		logrus.WithField("brokers", appCfg.Kafka.Brokers).Info("✅ Rate events go to kafka")
	}
	c.closers = append(c.closers, func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logrus.WithError(closeErr).Warn("Event publisher close error")
		}
	})

	c.registry = prometheus.NewRegistry()
	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(c.registry)

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	if appCfg.ExchangeRateAPI.APIKey == "" {
		logrus.Warn("Exchange rate api key is empty, the commercial source will fail")
	}
	registry := provider.NewRegistry(
		provider.WithLogging(provider.NewCentralBank(baseHTTPClient, appCfg.CentralBank.URL), m),
		provider.WithLogging(provider.NewCommercialAPI(
			baseHTTPClient,
			strings.TrimSuffix(appCfg.ExchangeRateAPI.BaseURL, "/"),
			appCfg.ExchangeRateAPI.APIKey,
		), m),
		provider.Manual{},
	)

	clock := clockwork.NewRealClock()
	c.store = rate.NewRateStore(rate.StoreDeps{
		Currencies: repos.currencies,
		History:    repos.history,
		Validator:  rate.NewRateValidator(holder.Current().UpdateFrequency.Interval()),
		Settings:   holder,
		Cache:      currencyCache,
		Publisher:  publisher,
		Metrics:    m,
		Clock:      clock,
	})
	c.engine = rate.NewConversionEngine(c.store, holder)
	c.recorder = rate.NewPaymentRecorder(c.engine, repos.payments, holder, m, clock)
	c.service = rate.NewCurrencyService(repos.currencies, c.store, holder, clock)
	c.scheduler = rate.NewUpdateScheduler(rate.SchedulerDeps{
		Store:        c.store,
		Providers:    registry,
		Settings:     holder,
		Metrics:      m,
		Clock:        clock,
		TickInterval: time.Duration(appCfg.Scheduler.TickSeconds) * time.Second,
		FetchTimeout: time.Duration(appCfg.Scheduler.FetchTimeoutSeconds) * time.Second,
	})

	if err = c.service.EnsureBase(startupCtx); err != nil {
		logrus.WithError(err).Error("Failed to register base currency")
		return nil, err
	}
	return c, nil
}

func (c *components) openStorage(ctx context.Context) (repositories, error) {
	if c.cfg.Storage.Driver == config.StorageMemory {
		mem := memory.New()
		logrus.Warn("Using in-memory storage, data is lost on restart")
		return repositories{
			currencies: memory.NewCurrencyRepository(mem),
			history:    memory.NewHistoryRepository(mem),
			payments:   memory.NewPaymentRepository(mem),
			settings:   memory.NewSettingsRepository(mem),
		}, nil
	}

	// DB pool
	pool, err := db.CreatePoolAndPing(ctx, c.cfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return repositories{}, err
	}
	c.closers = append(c.closers, pool.Close)
	logrus.Info("✅ Postgres connection successful")

	if err = db.Migrate(ctx, pool); err != nil {
		logrus.WithError(err).Error("Failed to apply migrations")
		return repositories{}, err
	}
	return postgresRepositories(pool), nil
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		currencies: postgres.NewCurrencyRepository(pool),
		history:    postgres.NewHistoryRepository(pool),
		payments:   postgres.NewPaymentRepository(pool),
		settings:   postgres.NewSettingsRepository(pool),
	}
}
