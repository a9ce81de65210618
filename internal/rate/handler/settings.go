package handler

import (
	"net/http"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type SettingsResponse struct {
	BaseCurrency              string `json:"base_currency" example:"USD"`
	RateSource                string `json:"rate_source" example:"ecb"`
	UpdateFrequency           string `json:"update_frequency" example:"daily"`
	AutoUpdate                bool   `json:"auto_update"`
	RoundToDecimals           int32  `json:"round_to_decimals" example:"2"`
	ShowBothCurrencies        bool   `json:"show_both_currencies"`
	AllowMultiCurrencyPayment bool   `json:"allow_multi_currency_payment"`
	MaxDeviationPercent       string `json:"max_deviation_percent" example:"10"`
	HistoryContinuity         bool   `json:"history_continuity"`
}

func toSettingsResponse(s domain.Settings) SettingsResponse {
	return SettingsResponse{
		BaseCurrency:              s.BaseCurrency,
		RateSource:                string(s.RateSource),
		UpdateFrequency:           string(s.UpdateFrequency),
		AutoUpdate:                s.AutoUpdate,
		RoundToDecimals:           s.RoundToDecimals,
		ShowBothCurrencies:        s.ShowBothCurrencies,
		AllowMultiCurrencyPayment: s.AllowMultiCurrencyPayment,
		MaxDeviationPercent:       s.MaxDeviationPercent.String(),
		HistoryContinuity:         s.HistoryContinuity,
	}
}

// UpdateSettingsRequest changes only the fields that are present.
type UpdateSettingsRequest struct {
	BaseCurrency              *string          `json:"base_currency,omitempty" example:"EUR"`
	RateSource                *string          `json:"rate_source,omitempty" example:"exchangerate_api"`
	UpdateFrequency           *string          `json:"update_frequency,omitempty" example:"hourly"`
	AutoUpdate                *bool            `json:"auto_update,omitempty"`
	RoundToDecimals           *int32           `json:"round_to_decimals,omitempty"`
	ShowBothCurrencies        *bool            `json:"show_both_currencies,omitempty"`
	AllowMultiCurrencyPayment *bool            `json:"allow_multi_currency_payment,omitempty"`
	MaxDeviationPercent       *decimal.Decimal `json:"max_deviation_percent,omitempty" swaggertype:"string"`
	HistoryContinuity         *bool            `json:"history_continuity,omitempty"`
}

func (req UpdateSettingsRequest) apply(s domain.Settings) domain.Settings {
	if req.BaseCurrency != nil {
		s.BaseCurrency = normalizeCode(*req.BaseCurrency)
	}
	if req.RateSource != nil {
		s.RateSource = domain.RateSource(*req.RateSource)
	}
	if req.UpdateFrequency != nil {
		s.UpdateFrequency = domain.UpdateFrequency(*req.UpdateFrequency)
	}
	if req.AutoUpdate != nil {
		s.AutoUpdate = *req.AutoUpdate
	}
	if req.RoundToDecimals != nil {
		s.RoundToDecimals = *req.RoundToDecimals
	}
	if req.ShowBothCurrencies != nil {
		s.ShowBothCurrencies = *req.ShowBothCurrencies
	}
	if req.AllowMultiCurrencyPayment != nil {
		s.AllowMultiCurrencyPayment = *req.AllowMultiCurrencyPayment
	}
	if req.MaxDeviationPercent != nil {
		s.MaxDeviationPercent = *req.MaxDeviationPercent
	}
	if req.HistoryContinuity != nil {
		s.HistoryContinuity = *req.HistoryContinuity
	}
	return s
}

// GetSettings godoc
// @Summary Current settings
// @Tags Settings
// @Produce json
// @Success 200 {object} SettingsResponse
// @Router /settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSettingsResponse(h.currencies.Settings()))
}

// UpdateSettings godoc
// @Summary Update settings
// @Description Changing the base currency re-expresses every rate against the new base
// @Tags Settings
// @Accept json
// @Produce json
// @Param request body UpdateSettingsRequest true "Fields to change"
// @Success 200 {object} SettingsResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse "new base is not registered"
// @Router /settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	next := req.apply(h.currencies.Settings())
	s, err := h.currencies.UpdateSettings(r.Context(), next)
	if err != nil {
		handleError(w, err, "UpdateSettings", "settings weren't updated", logrus.Fields{"base": next.BaseCurrency})
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}
