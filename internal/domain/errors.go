package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFetchFailed        = errors.New("fetch failed")
	ErrValidationRejected = errors.New("rate rejected by validation")
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInconsistentState  = errors.New("inconsistent rate state")

	ErrRateNotFound     = errors.New("rate not found")
	ErrRateUnchanged    = errors.New("rate unchanged")
	ErrManualSource     = errors.New("rate source is set to manual")
	ErrBaseCurrency     = errors.New("operation not allowed on base currency")
	ErrCurrencyInUse    = errors.New("currency has recorded payments")
	ErrCurrencyExists   = errors.New("currency already exists")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrPaymentReversed  = errors.New("payment already reversed")
	ErrMultiCurrency    = errors.New("multi-currency payments are disabled")
	ErrBaseChanged      = errors.New("base currency changed")
)

// FetchError is returned by rate providers. When Missing is set the fetch
// itself succeeded and the partial result is returned alongside the error.
type FetchError struct {
	Provider string
	Missing  []string
	Err      error
}

func (e *FetchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: currencies not available: %s", e.Provider, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetchFailed}
	}
	return []error{ErrFetchFailed, e.Err}
}

// RejectionError carries the validator reason for a rejected rate.
type RejectionError struct {
	Code   string
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("rate for %s rejected: %s", e.Code, e.Reason)
}

func (e *RejectionError) Unwrap() error { return ErrValidationRejected }
