package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RateSource string

const (
	SourceManual        RateSource = "manual"
	SourceCentralBank   RateSource = "ecb"
	SourceCommercialAPI RateSource = "exchangerate_api"
	// SourceRebase marks history rows written when the base currency changes.
	SourceRebase RateSource = "rebase"
)

func ParseRateSource(s string) (RateSource, error) {
	switch src := RateSource(s); src {
	case SourceManual, SourceCentralBank, SourceCommercialAPI:
		return src, nil
	default:
		return "", fmt.Errorf("unknown rate source %q", s)
	}
}

type UpdateFrequency string

const (
	FrequencyHourly UpdateFrequency = "hourly"
	FrequencyDaily  UpdateFrequency = "daily"
	FrequencyWeekly UpdateFrequency = "weekly"
	FrequencyManual UpdateFrequency = "manual"
)

func ParseUpdateFrequency(s string) (UpdateFrequency, error) {
	switch f := UpdateFrequency(s); f {
	case FrequencyHourly, FrequencyDaily, FrequencyWeekly, FrequencyManual:
		return f, nil
	default:
		return "", fmt.Errorf("unknown update frequency %q", s)
	}
}

// Interval returns zero for manual-only frequency.
func (f UpdateFrequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

type Settings struct {
	BaseCurrency              string
	RateSource                RateSource
	UpdateFrequency           UpdateFrequency
	AutoUpdate                bool
	RoundToDecimals           int32
	ShowBothCurrencies        bool
	AllowMultiCurrencyPayment bool
	MaxDeviationPercent       decimal.Decimal
	HistoryContinuity         bool
}

// Validate checks the shape of the settings, not the existence of the base currency.
func (s Settings) Validate() error {
	if !IsCurrencyCode(s.BaseCurrency) {
		return fmt.Errorf("invalid base currency %q", s.BaseCurrency)
	}
	if _, err := ParseRateSource(string(s.RateSource)); err != nil {
		return err
	}
	if _, err := ParseUpdateFrequency(string(s.UpdateFrequency)); err != nil {
		return err
	}
	if s.RoundToDecimals < 0 {
		return fmt.Errorf("round_to_decimals must not be negative")
	}
	if s.MaxDeviationPercent.IsNegative() {
		return fmt.Errorf("max_deviation_percent must not be negative")
	}
	return nil
}

// IsCurrencyCode reports whether code is three uppercase ASCII letters.
func IsCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}
