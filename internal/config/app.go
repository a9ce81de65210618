package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"multicurrency/internal/domain"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type DbServer struct {
	Host                   string `mapstructure:"host"`
	Port                   string `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Pass                   string `mapstructure:"pass"`
	Name                   string `mapstructure:"name"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	ConnMaxLifetimeSeconds int    `mapstructure:"conn_max_lifetime_seconds"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type Scheduler struct {
	TickSeconds         int `mapstructure:"tick_seconds"`
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds"`
}

type CentralBank struct {
	URL string `mapstructure:"url"`
}

type ExchangeRateAPI struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Currency holds the settings an instance starts with before any are persisted.
type Currency struct {
	BaseCurrency              string `mapstructure:"base_currency"`
	RateSource                string `mapstructure:"rate_source"`
	UpdateFrequency           string `mapstructure:"update_frequency"`
	AutoUpdate                bool   `mapstructure:"auto_update"`
	RoundToDecimals           int32  `mapstructure:"round_to_decimals"`
	ShowBothCurrencies        bool   `mapstructure:"show_both_currencies"`
	AllowMultiCurrencyPayment bool   `mapstructure:"allow_multi_currency_payment"`
	MaxDeviationPercent       string `mapstructure:"max_deviation_percent"`
	HistoryContinuity         bool   `mapstructure:"history_continuity"`
}

func (c Currency) Settings() (domain.Settings, error) {
	deviation, err := decimal.NewFromString(c.MaxDeviationPercent)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("invalid max_deviation_percent %q: %w", c.MaxDeviationPercent, err)
	}
	s := domain.Settings{
		BaseCurrency:              strings.ToUpper(c.BaseCurrency),
		RateSource:                domain.RateSource(c.RateSource),
		UpdateFrequency:           domain.UpdateFrequency(c.UpdateFrequency),
		AutoUpdate:                c.AutoUpdate,
		RoundToDecimals:           c.RoundToDecimals,
		ShowBothCurrencies:        c.ShowBothCurrencies,
		AllowMultiCurrencyPayment: c.AllowMultiCurrencyPayment,
		MaxDeviationPercent:       deviation,
		HistoryContinuity:         c.HistoryContinuity,
	}
	if err = s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

type Cache struct {
	MaxItems   int64 `mapstructure:"max_items"`
	TTLSeconds int   `mapstructure:"ttl_seconds"`
}

type Kafka struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	DbServer        DbServer        `mapstructure:"db_server"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	Logging         Logging         `mapstructure:"logging"`
	Scheduler       Scheduler       `mapstructure:"scheduler"`
	CentralBank     CentralBank     `mapstructure:"central_bank"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	Currency        Currency        `mapstructure:"currency"`
	Cache           Cache           `mapstructure:"cache"`
	Kafka           Kafka           `mapstructure:"kafka"`
	Storage         Storage         `mapstructure:"storage"`
}

// Init reads the yaml file at path (config.yaml when empty). A .env file in the
// working directory is loaded first if present.
func Init(path string) (*AppConfig, error) {
	var cfg AppConfig

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if path == "" {
		path = "config.yaml"
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetDefault("http_server.port", "8080")
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("logging.level", "info")
	v.SetDefault("scheduler.tick_seconds", 30)
	v.SetDefault("scheduler.fetch_timeout_seconds", 10)
	v.SetDefault("exchange_rate_api.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("currency.base_currency", "USD")
	v.SetDefault("currency.rate_source", string(domain.SourceCentralBank))
	v.SetDefault("currency.update_frequency", string(domain.FrequencyDaily))
	v.SetDefault("currency.auto_update", true)
	v.SetDefault("currency.round_to_decimals", 2)
	v.SetDefault("currency.show_both_currencies", true)
	v.SetDefault("currency.allow_multi_currency_payment", true)
	v.SetDefault("currency.max_deviation_percent", "10")
	v.SetDefault("cache.max_items", 1000)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("storage.driver", StoragePostgres)

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("db_server.min_conns", "DB_MIN_CONNS")

	// http env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// providers
	_ = v.BindEnv("central_bank.url", "CENTRAL_BANK_URL")
	_ = v.BindEnv("exchange_rate_api.base_url", "EXCHANGE_RATE_API_BASE_URL")
	_ = v.BindEnv("exchange_rate_api.api_key", "EXCHANGE_RATE_API_KEY")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	switch cfg.Storage.Driver {
	case StorageMemory, StoragePostgres:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}
