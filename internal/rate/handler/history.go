package handler

import (
	"net/http"
	"strconv"
	"time"

	"multicurrency/internal/domain"
	"multicurrency/internal/rate"
)

type HistoryEntryResponse struct {
	ID            int64     `json:"id" example:"12"`
	Currency      string    `json:"currency" example:"EUR"`
	OldRate       string    `json:"old_rate,omitempty" example:"1.08"`
	NewRate       string    `json:"new_rate" example:"1.087"`
	Source        string    `json:"source" example:"ecb"`
	RecordedAt    time.Time `json:"recorded_at"`
	Failed        bool      `json:"failed"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

type HistoryResponse struct {
	Entries []HistoryEntryResponse `json:"entries"`
	Total   int                    `json:"total" example:"120"`
	Page    int                    `json:"page" example:"1"`
	PerPage int                    `json:"per_page" example:"50"`
}

// ListHistory godoc
// @Summary Rate history
// @Description Paginated audit trail of accepted and failed rate changes
// @Tags History
// @Produce json
// @Param currency query string false "Currency code"
// @Param from query string false "RFC3339, inclusive"
// @Param to query string false "RFC3339, exclusive"
// @Param page query int false "Page, from 1"
// @Param per_page query int false "Entries per page, at most 500"
// @Param order query string false "newest or chronological"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /history [get]
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter domain.HistoryFilter

	if raw := q.Get("currency"); raw != "" {
		filter.Currency = normalizeCode(raw)
		if err := rate.ValidateCode(filter.Currency); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, p.name+" must be an RFC3339 timestamp")
			return
		}
		*p.dst = t.UTC()
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"page", &filter.Page}, {"per_page", &filter.PerPage}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, p.name+" must be a positive integer")
			return
		}
		*p.dst = n
	}
	if filter.Page > domain.MaxPage {
		writeError(w, http.StatusBadRequest, "page must not exceed "+strconv.Itoa(domain.MaxPage))
		return
	}
	switch order := domain.HistoryOrder(q.Get("order")); order {
	case "", domain.OrderNewestFirst, domain.OrderChronological:
		filter.Order = order
	default:
		writeError(w, http.StatusBadRequest, "order must be newest or chronological")
		return
	}

	page, err := h.rates.ListHistory(r.Context(), filter)
	if err != nil {
		handleError(w, err, "ListHistory", "ups, couldn't list history this time", nil)
		return
	}

	res := HistoryResponse{
		Entries: make([]HistoryEntryResponse, 0, len(page.Entries)),
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
	for _, e := range page.Entries {
		item := HistoryEntryResponse{
			ID:            e.ID,
			Currency:      e.Currency,
			NewRate:       e.NewRate.String(),
			Source:        e.Source,
			RecordedAt:    e.RecordedAt,
			Failed:        e.Failed(),
			FailureReason: e.FailureReason,
		}
		if e.OldRate != nil {
			item.OldRate = e.OldRate.String()
		}
		res.Entries = append(res.Entries, item)
	}
	writeJSON(w, http.StatusOK, res)
}
