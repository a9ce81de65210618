package handler

import (
	"net/http"
	"strings"
	"time"

	"multicurrency/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type RecordPaymentRequest struct {
	SaleID   string          `json:"sale_id" example:"1042"`
	Currency string          `json:"currency" example:"EUR"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
}

type PaymentResponse struct {
	ID             string    `json:"id" example:"77b5d9f5-0569-47e3-aee2-f659d59fbd97"`
	SaleID         string    `json:"sale_id" example:"1042"`
	Currency       string    `json:"currency" example:"EUR"`
	OriginalAmount string    `json:"original_amount" example:"50"`
	RateUsed       string    `json:"rate_used" example:"1.087"`
	BaseAmount     string    `json:"base_amount" example:"54.35"`
	PaymentDate    time.Time `json:"payment_date" example:"2025-01-02T15:04:05Z"`
	ReversalOf     string    `json:"reversal_of,omitempty"`
}

func toPaymentResponse(p domain.CurrencyPayment) PaymentResponse {
	res := PaymentResponse{
		ID:             p.ID.String(),
		SaleID:         p.SaleID,
		Currency:       p.Currency,
		OriginalAmount: p.OriginalAmount.String(),
		RateUsed:       p.RateUsed.String(),
		BaseAmount:     p.BaseAmount.String(),
		PaymentDate:    p.PaymentDate,
	}
	if p.ReversalOf != nil {
		res.ReversalOf = p.ReversalOf.String()
	}
	return res
}

// RecordPayment godoc
// @Summary Record a payment
// @Description Records a foreign-currency payment with the current rate snapshot
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body RecordPaymentRequest true "Payment"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse "multi-currency payments are disabled"
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	saleID := strings.TrimSpace(req.SaleID)
	if saleID == "" {
		writeError(w, http.StatusBadRequest, "sale_id is required")
		return
	}
	code := normalizeCode(req.Currency)

	p, err := h.payments.RecordPayment(r.Context(), saleID, code, req.Amount)
	if err != nil {
		handleError(w, err, "RecordPayment", "payment wasn't recorded", logrus.Fields{"sale_id": saleID, "currency": code})
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

// ListPayments godoc
// @Summary List payments of a sale
// @Tags Payments
// @Produce json
// @Param sale_id query string true "Sale ID"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	saleID := strings.TrimSpace(r.URL.Query().Get("sale_id"))
	if saleID == "" {
		writeError(w, http.StatusBadRequest, "sale_id is required")
		return
	}

	list, err := h.payments.ListBySale(r.Context(), saleID)
	if err != nil {
		handleError(w, err, "ListPayments", "ups, couldn't list payments this time", logrus.Fields{"sale_id": saleID})
		return
	}
	res := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		res = append(res, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, res)
}

// ReversePayment godoc
// @Summary Reverse a payment
// @Description Records a negated copy of the payment with its original rate
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "already reversed"
// @Failure 500 {object} errorResponse
// @Router /payments/{id}/reverse [post]
func (h *Handler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment ID format")
		return
	}

	p, err := h.payments.Reverse(r.Context(), id)
	if err != nil {
		handleError(w, err, "ReversePayment", "payment wasn't reversed", logrus.Fields{"payment_id": id})
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}
