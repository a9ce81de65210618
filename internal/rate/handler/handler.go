package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"multicurrency/internal/domain"
	"multicurrency/internal/rate"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 4 << 10

type updateScheduler interface {
	Trigger(ctx context.Context, scope string) (rate.UpdateResult, error)
	Status() rate.Status
}

type rateReader interface {
	GetCurrency(ctx context.Context, code string) (domain.Currency, error)
	GetCurrentRate(ctx context.Context, code string) (decimal.Decimal, error)
	GetRateAt(ctx context.Context, code string, at time.Time) (decimal.Decimal, error)
	ActiveRates(ctx context.Context) ([]domain.Currency, error)
	ListHistory(ctx context.Context, filter domain.HistoryFilter) (domain.HistoryPage, error)
	Halted(code string) bool
}

type converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (rate.Conversion, error)
}

type paymentRecorder interface {
	RecordPayment(ctx context.Context, saleID, code string, amount decimal.Decimal) (domain.CurrencyPayment, error)
	Reverse(ctx context.Context, id uuid.UUID) (domain.CurrencyPayment, error)
	ListBySale(ctx context.Context, saleID string) ([]domain.CurrencyPayment, error)
}

type currencyManager interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Currency, error)
	Get(ctx context.Context, code string) (domain.Currency, error)
	Create(ctx context.Context, c domain.Currency) (domain.Currency, error)
	UpdateDetails(ctx context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error)
	SetRate(ctx context.Context, code string, r decimal.Decimal) (domain.HistoryEntry, error)
	Toggle(ctx context.Context, code string) (domain.Currency, error)
	Delete(ctx context.Context, code string) error
	Settings() domain.Settings
	UpdateSettings(ctx context.Context, s domain.Settings) (domain.Settings, error)
	Resolve(code string) bool
}

type Handler struct {
	scheduler  updateScheduler
	rates      rateReader
	converter  converter
	payments   paymentRecorder
	currencies currencyManager
}

// Deps lists what the handlers call into. Concrete services from package rate
// satisfy every field.
type Deps struct {
	Scheduler  updateScheduler
	Rates      rateReader
	Converter  converter
	Payments   paymentRecorder
	Currencies currencyManager
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		scheduler:  deps.Scheduler,
		rates:      deps.Rates,
		converter:  deps.Converter,
		payments:   deps.Payments,
		currencies: deps.Currencies,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	writeJSON(w, statusCode, errorResponse{Error: errorMsg})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := newStrictDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func newStrictDecoder(body io.Reader) *json.Decoder {
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// codeParam reads and validates the {code} path parameter.
func codeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := normalizeCode(chi.URLParam(r, "code"))
	if err := rate.ValidateCode(code); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return code, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, rate.ErrCodeRequired),
		errors.Is(err, rate.ErrCodeInvalid),
		errors.Is(err, rate.ErrSameCodes),
		errors.Is(err, rate.ErrInvalidCurrency),
		errors.Is(err, rate.ErrInvalidSettings),
		errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMultiCurrency):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrRateNotFound),
		errors.Is(err, domain.ErrPaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrManualSource),
		errors.Is(err, domain.ErrInconsistentState),
		errors.Is(err, domain.ErrBaseCurrency),
		errors.Is(err, domain.ErrCurrencyInUse),
		errors.Is(err, domain.ErrCurrencyExists),
		errors.Is(err, domain.ErrPaymentReversed),
		errors.Is(err, domain.ErrBaseChanged),
		errors.Is(err, domain.ErrRateUnchanged):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidationRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with its mapped status. Unexpected errors are logged
// and hidden behind msg.
func handleError(w http.ResponseWriter, err error, handler, msg string, fields logrus.Fields) {
	status := statusFor(err)
	if status != http.StatusInternalServerError {
		writeError(w, status, err.Error())
		return
	}
	logrus.WithError(err).WithField("handler", handler).WithFields(fields).Error(msg)
	writeError(w, status, msg)
}
