package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyPayment is immutable once recorded. Corrections are new records with ReversalOf set.
type CurrencyPayment struct {
	ID             uuid.UUID
	SaleID         string
	Currency       string
	OriginalAmount decimal.Decimal
	RateUsed       decimal.Decimal
	BaseAmount     decimal.Decimal
	PaymentDate    time.Time
	ReversalOf     *uuid.UUID
}
