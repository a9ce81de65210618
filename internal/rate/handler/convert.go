package handler

import (
	"net/http"

	"multicurrency/internal/rate"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ConvertResponse struct {
	From   string `json:"from" example:"EUR"`
	To     string `json:"to" example:"GBP"`
	Amount string `json:"amount" example:"100"`
	Result string `json:"result" example:"86.96"`
	// Rate is units of to per 1 unit of from.
	Rate string `json:"rate" example:"0.8696"`
}

// Convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies through the base currency
// @Tags Conversion
// @Produce json
// @Param from query string true "Source currency"
// @Param to query string true "Target currency"
// @Param amount query string true "Decimal amount"
// @Success 200 {object} ConvertResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /convert [get]
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := normalizeCode(q.Get("from"))
	to := normalizeCode(q.Get("to"))
	if err := rate.ValidateCodes(from, to); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	conv, err := h.converter.Convert(r.Context(), amount, from, to)
	if err != nil {
		handleError(w, err, "Convert", "ups, couldn't convert this time", logrus.Fields{"from": from, "to": to})
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		From:   conv.From,
		To:     conv.To,
		Amount: conv.Amount.String(),
		Result: conv.Result.String(),
		Rate:   conv.Rate.String(),
	})
}
