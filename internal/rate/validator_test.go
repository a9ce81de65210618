package rate

import (
	"testing"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	eur = domain.Currency{Code: "EUR", Rate: decimal.RequireFromString("1.087"), DecimalPlaces: 2, IsActive: true}
)

func input(candidate string, last *domain.HistoryEntry) ValidationInput {
	return ValidationInput{
		Currency:            eur,
		Candidate:           decimal.RequireFromString(candidate),
		Source:              string(domain.SourceCentralBank),
		Last:                last,
		Now:                 now,
		Base:                "USD",
		MaxDeviationPercent: decimal.NewFromInt(10),
		Window:              time.Hour,
	}
}

func accepted(rate string, source domain.RateSource, at time.Time) *domain.HistoryEntry {
	return &domain.HistoryEntry{Currency: "EUR", NewRate: decimal.RequireFromString(rate), Source: string(source), RecordedAt: at}
}

func TestRateValidator_Validate(t *testing.T) {
	v := NewRateValidator(0)
	prev := accepted("1.087", domain.SourceCentralBank, now.Add(-10*time.Minute))

	cases := []struct {
		name    string
		in      ValidationInput
		outcome domain.Outcome
		reason  string
	}{
		{name: "first rate skips deviation", in: input("5", nil), outcome: domain.OutcomeAccept},
		{name: "negative", in: input("-5", prev), outcome: domain.OutcomeReject, reason: ReasonNonPositive},
		{name: "zero", in: input("0", nil), outcome: domain.OutcomeReject, reason: ReasonNonPositive},
		{name: "small move", in: input("1.10", prev), outcome: domain.OutcomeAccept},
		{name: "exactly at threshold", in: input("1.1957", prev), outcome: domain.OutcomeAccept},
		{name: "deviation too large", in: input("1.5", prev), outcome: domain.OutcomeReject, reason: "deviation 37.99% exceeds threshold 10%"},
		{name: "duplicate in window", in: input("1.087", prev), outcome: domain.OutcomeSkip, reason: ReasonDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := v.Validate(tc.in)
			require.Equal(t, tc.outcome, d.Outcome)
			require.Equal(t, tc.reason, d.Reason)
		})
	}
}

func TestRateValidator_DeviationDisabled(t *testing.T) {
	v := NewRateValidator(0)
	in := input("3", accepted("1.087", domain.SourceCentralBank, now.Add(-2*time.Hour)))
	in.MaxDeviationPercent = decimal.Zero

	require.Equal(t, domain.OutcomeAccept, v.Validate(in).Outcome)
}

func TestRateValidator_Duplicates(t *testing.T) {
	v := NewRateValidator(0)

	t.Run("outside window accepted", func(t *testing.T) {
		in := input("1.087", accepted("1.087", domain.SourceCentralBank, now.Add(-2*time.Hour)))
		require.Equal(t, domain.OutcomeAccept, v.Validate(in).Outcome)
	})
	t.Run("manual source never duplicate", func(t *testing.T) {
		in := input("1.087", accepted("1.087", domain.SourceManual, now.Add(-time.Minute)))
		in.Source = string(domain.SourceManual)
		require.Equal(t, domain.OutcomeAccept, v.Validate(in).Outcome)
	})
	t.Run("different source accepted", func(t *testing.T) {
		in := input("1.087", accepted("1.087", domain.SourceManual, now.Add(-time.Minute)))
		require.Equal(t, domain.OutcomeAccept, v.Validate(in).Outcome)
	})
	t.Run("history continuity accepts", func(t *testing.T) {
		in := input("1.087", accepted("1.087", domain.SourceCentralBank, now.Add(-time.Minute)))
		in.HistoryContinuity = true
		require.Equal(t, domain.OutcomeAccept, v.Validate(in).Outcome)
	})
	t.Run("default window when frequency is manual", func(t *testing.T) {
		in := input("1.087", accepted("1.087", domain.SourceCentralBank, now.Add(-23*time.Hour)))
		in.Window = 0
		require.Equal(t, domain.OutcomeSkip, v.Validate(in).Outcome)
	})
}

func TestRateValidator_BaseCurrency(t *testing.T) {
	v := NewRateValidator(0)
	in := input("1.2", nil)
	in.Currency = domain.Currency{Code: "USD", Rate: domain.One}

	d := v.Validate(in)
	require.Equal(t, domain.OutcomeReject, d.Outcome)
	require.Equal(t, ReasonBaseFixed, d.Reason)

	in.Candidate = domain.One
	require.Equal(t, domain.OutcomeSkip, v.Validate(in).Outcome)
}

func TestValidateCodes(t *testing.T) {
	require.ErrorIs(t, ValidateCode(""), ErrCodeRequired)
	require.ErrorIs(t, ValidateCode("EU"), ErrCodeInvalid)
	require.NoError(t, ValidateCode("EUR"))

	require.ErrorIs(t, ValidateCodes("usd", "EUR"), ErrCodeInvalid)
	require.ErrorIs(t, ValidateCodes("EUR", "EUR"), ErrSameCodes)
	require.NoError(t, ValidateCodes("USD", "EUR"))
}
