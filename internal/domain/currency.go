package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency rate is expressed as units of base currency per 1 unit of Code.
type Currency struct {
	Code          string
	Name          string
	Symbol        string
	Rate          decimal.Decimal
	DecimalPlaces int32
	SortOrder     int
	IsActive      bool
	LastUpdated   *time.Time
	CreatedAt     time.Time
}

// CurrencyDetails holds the fields an operator may edit without touching the rate.
type CurrencyDetails struct {
	Name          string
	Symbol        string
	DecimalPlaces int32
	SortOrder     int
}

// RatePlaces is the scale rates are stored with.
const RatePlaces = 10

var One = decimal.NewFromInt(1)
