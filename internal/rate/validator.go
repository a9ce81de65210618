package rate

import (
	"errors"
	"fmt"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrCodeRequired = errors.New("currency code is required")
	ErrCodeInvalid  = errors.New("currency code must be three letters")
	ErrSameCodes    = errors.New("source and target currency must be different")
)

const (
	ReasonBaseFixed   = "base currency rate is fixed"
	ReasonNonPositive = "non-positive rate"
	ReasonDuplicate   = "duplicate rate within update window"
)

var hundred = decimal.NewFromInt(100)

// ValidationInput is everything the validator needs to judge one candidate rate.
type ValidationInput struct {
	Currency  domain.Currency
	Candidate decimal.Decimal
	Source    string
	// Last is the most recent accepted history entry, nil for a currency's first rate.
	Last *domain.HistoryEntry
	Now  time.Time

	Base                string
	MaxDeviationPercent decimal.Decimal
	HistoryContinuity   bool
	Window              time.Duration
}

type RateValidator struct {
	defaultWindow time.Duration
}

func (v *RateValidator) Validate(in ValidationInput) domain.Decision {
	if in.Currency.Code == in.Base {
		if in.Candidate.Equal(domain.One) {
			return domain.Skip(ReasonBaseFixed)
		}
		return domain.Reject(ReasonBaseFixed)
	}
	if !in.Candidate.IsPositive() {
		return domain.Reject(ReasonNonPositive)
	}
	if in.Last == nil {
		return domain.Accept()
	}

	prev := in.Last.NewRate
	if in.MaxDeviationPercent.IsPositive() && prev.IsPositive() {
		deviation := in.Candidate.Sub(prev).Abs().Div(prev).Mul(hundred)
		if deviation.GreaterThan(in.MaxDeviationPercent) {
			return domain.Reject(fmt.Sprintf("deviation %s%% exceeds threshold %s%%",
				deviation.StringFixed(2), in.MaxDeviationPercent.String()))
		}
	}

	if v.isDuplicate(in) {
		if in.HistoryContinuity {
			return domain.Accept()
		}
		return domain.Skip(ReasonDuplicate)
	}
	return domain.Accept()
}

func (v *RateValidator) isDuplicate(in ValidationInput) bool {
	if in.Source == string(domain.SourceManual) || in.Last.Source != in.Source {
		return false
	}
	if !in.Last.NewRate.Equal(in.Candidate) {
		return false
	}
	window := in.Window
	if window <= 0 {
		window = v.defaultWindow
	}
	return in.Now.Sub(in.Last.RecordedAt) < window
}

// NewRateValidator uses defaultWindow for duplicate detection when the update
// frequency has no interval of its own.
func NewRateValidator(defaultWindow time.Duration) *RateValidator {
	if defaultWindow <= 0 {
		defaultWindow = domain.FrequencyDaily.Interval()
	}
	return &RateValidator{defaultWindow: defaultWindow}
}

// ValidateCode checks the shape of a request currency code. Existence is
// checked by the store.
func ValidateCode(code string) error {
	if code == "" {
		return ErrCodeRequired
	}
	if !domain.IsCurrencyCode(code) {
		return ErrCodeInvalid
	}
	return nil
}

func ValidateCodes(from, to string) error {
	if err := ValidateCode(from); err != nil {
		return fmt.Errorf("from: %w", err)
	}
	if err := ValidateCode(to); err != nil {
		return fmt.Errorf("to: %w", err)
	}
	if from == to {
		return ErrSameCodes
	}
	return nil
}
