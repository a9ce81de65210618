package handler

import (
	"fmt"
	"net/http"
	"time"

	"multicurrency/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type GetRateResponse struct {
	Code string `json:"code" example:"EUR"`
	Base string `json:"base" example:"USD"`
	// Rate is units of base per 1 unit of code.
	Rate        string     `json:"rate" example:"1.0869565217"`
	At          *time.Time `json:"at,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// GetRate godoc
// @Summary Get rate by code
// @Description Current rate of a currency, or the rate in effect at a point in time
// @Tags Rates
// @Produce json
// @Param code path string true "Currency code"
// @Param at query string false "RFC3339 timestamp"
// @Success 200 {object} GetRateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /rates/{code} [get]
func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
	code, ok := codeParam(w, r)
	if !ok {
		return
	}

	var at *time.Time
	if raw := r.URL.Query().Get("at"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "at must be an RFC3339 timestamp")
			return
		}
		t = t.UTC()
		at = &t
	}

	fields := logrus.Fields{"currency": code}
	c, err := h.rates.GetCurrency(r.Context(), code)
	if err == nil && !c.IsActive {
		err = fmt.Errorf("%w: %s is inactive", domain.ErrUnknownCurrency, code)
	}
	if err != nil {
		handleError(w, err, "GetRate", "ups, couldn't get rate this time", fields)
		return
	}

	var value decimal.Decimal
	if at != nil {
		value, err = h.rates.GetRateAt(r.Context(), code, *at)
	} else {
		value, err = h.rates.GetCurrentRate(r.Context(), code)
	}
	if err != nil {
		handleError(w, err, "GetRate", "ups, couldn't get rate this time", fields)
		return
	}

	res := GetRateResponse{
		Code: code,
		Base: h.currencies.Settings().BaseCurrency,
		Rate: value.String(),
		At:   at,
	}
	if at == nil {
		res.LastUpdated = c.LastUpdated
	}
	writeJSON(w, http.StatusOK, res)
}

type RateOverviewItem struct {
	Code          string `json:"code" example:"EUR"`
	Name          string `json:"name" example:"Euro"`
	Symbol        string `json:"symbol" example:"€"`
	Rate          string `json:"rate" example:"1.0869565217"`
	DecimalPlaces int32  `json:"decimal_places" example:"2"`
	// InverseRate is units of code per 1 unit of base, shown when both directions are displayed.
	InverseRate string     `json:"inverse_rate,omitempty" example:"0.92"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

type RatesOverviewResponse struct {
	Base               string             `json:"base" example:"USD"`
	ShowBothCurrencies bool               `json:"show_both_currencies"`
	Currencies         []RateOverviewItem `json:"currencies"`
}

// GetRatesOverview godoc
// @Summary Active rates
// @Description Every active currency with its current rate against base, in display order
// @Tags Rates
// @Produce json
// @Success 200 {object} RatesOverviewResponse
// @Failure 500 {object} errorResponse
// @Router /rates [get]
func (h *Handler) GetRatesOverview(w http.ResponseWriter, r *http.Request) {
	set := h.currencies.Settings()
	list, err := h.rates.ActiveRates(r.Context())
	if err != nil {
		handleError(w, err, "GetRatesOverview", "ups, couldn't get rates this time", nil)
		return
	}

	res := RatesOverviewResponse{
		Base:               set.BaseCurrency,
		ShowBothCurrencies: set.ShowBothCurrencies,
		Currencies:         make([]RateOverviewItem, 0, len(list)),
	}
	for _, c := range list {
		item := RateOverviewItem{
			Code:          c.Code,
			Name:          c.Name,
			Symbol:        c.Symbol,
			Rate:          c.Rate.String(),
			DecimalPlaces: c.DecimalPlaces,
			LastUpdated:   c.LastUpdated,
		}
		if set.ShowBothCurrencies && c.Rate.IsPositive() {
			item.InverseRate = domain.One.DivRound(c.Rate, domain.RatePlaces).String()
		}
		res.Currencies = append(res.Currencies, item)
	}
	writeJSON(w, http.StatusOK, res)
}
