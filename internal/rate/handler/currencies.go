package handler

import (
	"net/http"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CurrencyResponse struct {
	Code          string     `json:"code" example:"EUR"`
	Name          string     `json:"name" example:"Euro"`
	Symbol        string     `json:"symbol" example:"€"`
	Rate          string     `json:"rate" example:"1.087"`
	DecimalPlaces int32      `json:"decimal_places" example:"2"`
	SortOrder     int        `json:"sort_order" example:"1"`
	IsActive      bool       `json:"is_active" example:"true"`
	IsBase        bool       `json:"is_base"`
	Halted        bool       `json:"halted,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (h *Handler) toCurrencyResponse(c domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:          c.Code,
		Name:          c.Name,
		Symbol:        c.Symbol,
		Rate:          c.Rate.String(),
		DecimalPlaces: c.DecimalPlaces,
		SortOrder:     c.SortOrder,
		IsActive:      c.IsActive,
		IsBase:        c.Code == h.currencies.Settings().BaseCurrency,
		Halted:        h.rates.Halted(c.Code),
		LastUpdated:   c.LastUpdated,
		CreatedAt:     c.CreatedAt,
	}
}

type CreateCurrencyRequest struct {
	Code          string          `json:"code" example:"EUR"`
	Name          string          `json:"name" example:"Euro"`
	Symbol        string          `json:"symbol" example:"€"`
	Rate          decimal.Decimal `json:"rate" swaggertype:"string" example:"1.087"`
	DecimalPlaces int32           `json:"decimal_places" example:"2"`
	SortOrder     int             `json:"sort_order" example:"1"`
	IsActive      *bool           `json:"is_active,omitempty"`
}

type UpdateCurrencyRequest struct {
	Name          string `json:"name" example:"Euro"`
	Symbol        string `json:"symbol" example:"€"`
	DecimalPlaces int32  `json:"decimal_places" example:"2"`
	SortOrder     int    `json:"sort_order" example:"1"`
}

type SetRateRequest struct {
	Rate decimal.Decimal `json:"rate" swaggertype:"string" example:"1.09"`
}

// ListCurrencies godoc
// @Summary List currencies
// @Tags Currencies
// @Produce json
// @Param active query bool false "Only active currencies"
// @Success 200 {array} CurrencyResponse
// @Failure 500 {object} errorResponse
// @Router /currencies [get]
func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.currencies.List(r.Context(), activeOnly)
	if err != nil {
		handleError(w, err, "ListCurrencies", "ups, couldn't list currencies this time", nil)
		return
	}
	res := make([]CurrencyResponse, 0, len(list))
	for _, c := range list {
		res = append(res, h.toCurrencyResponse(c))
	}
	writeJSON(w, http.StatusOK, res)
}

// GetCurrency godoc
// @Summary Get currency
// @Tags Currencies
// @Produce json
// @Param code path string true "Currency code"
// @Success 200 {object} CurrencyResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /currencies/{code} [get]
func (h *Handler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	c, err := h.currencies.Get(r.Context(), code)
	if err != nil {
		handleError(w, err, "GetCurrency", "ups, couldn't get currency this time", logrus.Fields{"currency": code})
		return
	}
	writeJSON(w, http.StatusOK, h.toCurrencyResponse(c))
}

// CreateCurrency godoc
// @Summary Register a currency
// @Description The initial rate is stored as a manual history entry. The base currency always gets rate 1.
// @Tags Currencies
// @Accept json
// @Produce json
// @Param request body CreateCurrencyRequest true "Currency"
// @Success 201 {object} CurrencyResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse "already exists"
// @Router /currencies [post]
func (h *Handler) CreateCurrency(w http.ResponseWriter, r *http.Request) {
	var req CreateCurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	c, err := h.currencies.Create(r.Context(), domain.Currency{
		Code:          req.Code,
		Name:          req.Name,
		Symbol:        req.Symbol,
		Rate:          req.Rate,
		DecimalPlaces: req.DecimalPlaces,
		SortOrder:     req.SortOrder,
		IsActive:      active,
	})
	if err != nil {
		handleError(w, err, "CreateCurrency", "currency wasn't created", logrus.Fields{"currency": req.Code})
		return
	}
	writeJSON(w, http.StatusCreated, h.toCurrencyResponse(c))
}

// UpdateCurrency godoc
// @Summary Update currency details
// @Tags Currencies
// @Accept json
// @Produce json
// @Param code path string true "Currency code"
// @Param request body UpdateCurrencyRequest true "Details"
// @Success 200 {object} CurrencyResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /currencies/{code} [put]
func (h *Handler) UpdateCurrency(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	var req UpdateCurrencyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := h.currencies.UpdateDetails(r.Context(), code, domain.CurrencyDetails{
		Name:          req.Name,
		Symbol:        req.Symbol,
		DecimalPlaces: req.DecimalPlaces,
		SortOrder:     req.SortOrder,
	})
	if err != nil {
		handleError(w, err, "UpdateCurrency", "currency wasn't updated", logrus.Fields{"currency": code})
		return
	}
	writeJSON(w, http.StatusOK, h.toCurrencyResponse(c))
}

// DeleteCurrency godoc
// @Summary Delete a currency
// @Description Refused for the base currency and for currencies with recorded payments
// @Tags Currencies
// @Param code path string true "Currency code"
// @Success 204
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /currencies/{code} [delete]
func (h *Handler) DeleteCurrency(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	if err := h.currencies.Delete(r.Context(), code); err != nil {
		handleError(w, err, "DeleteCurrency", "currency wasn't deleted", logrus.Fields{"currency": code})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCurrencyRate godoc
// @Summary Enter a rate by hand
// @Description Goes through the same validation as provider rates. Source is recorded as manual.
// @Tags Currencies
// @Accept json
// @Produce json
// @Param code path string true "Currency code"
// @Param request body SetRateRequest true "Rate as units of base per 1 unit"
// @Success 200 {object} HistoryEntryResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "unchanged, base currency or halted"
// @Failure 422 {object} errorResponse "rejected by validation"
// @Router /currencies/{code}/rate [put]
func (h *Handler) SetCurrencyRate(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	var req SetRateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := h.currencies.SetRate(r.Context(), code, req.Rate)
	if err != nil {
		handleError(w, err, "SetCurrencyRate", "rate wasn't updated", logrus.Fields{"currency": code, "rate": req.Rate.String()})
		return
	}
	res := HistoryEntryResponse{
		ID:         e.ID,
		Currency:   e.Currency,
		NewRate:    e.NewRate.String(),
		Source:     e.Source,
		RecordedAt: e.RecordedAt,
	}
	if e.OldRate != nil {
		res.OldRate = e.OldRate.String()
	}
	writeJSON(w, http.StatusOK, res)
}

// ToggleCurrency godoc
// @Summary Activate or deactivate a currency
// @Tags Currencies
// @Produce json
// @Param code path string true "Currency code"
// @Success 200 {object} CurrencyResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "base currency"
// @Router /currencies/{code}/toggle [post]
func (h *Handler) ToggleCurrency(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	c, err := h.currencies.Toggle(r.Context(), code)
	if err != nil {
		handleError(w, err, "ToggleCurrency", "currency wasn't toggled", logrus.Fields{"currency": code})
		return
	}
	writeJSON(w, http.StatusOK, h.toCurrencyResponse(c))
}

type ResolveResponse struct {
	Code     string `json:"code" example:"EUR"`
	Resolved bool   `json:"resolved"`
}

// ResolveCurrency godoc
// @Summary Resume rate writes
// @Description Clears the halt placed on a currency after an inconsistent state was detected
// @Tags Currencies
// @Produce json
// @Param code path string true "Currency code"
// @Success 200 {object} ResolveResponse
// @Failure 400 {object} errorResponse
// @Router /currencies/{code}/resolve [post]
func (h *Handler) ResolveCurrency(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Code: code, Resolved: h.currencies.Resolve(code)})
}
