package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ScheduleUpdateRequest struct {
	// Currency limits the update to one code. Empty means every active currency.
	Currency string `json:"currency" example:"EUR"`
}

// ScheduleUpdate godoc
// @Summary Trigger a rate update
// @Description Runs an update cycle now for every active currency or a single one. A trigger that arrives while the same cycle is running gets its result.
// @Tags Rates
// @Accept json
// @Produce json
// @Param request body ScheduleUpdateRequest false "Optional currency scope"
// @Success 200 {object} rate.UpdateResult
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "rate source is manual"
// @Failure 422 {object} rate.UpdateResult "every rate was rejected"
// @Failure 502 {object} rate.UpdateResult "provider failure"
// @Router /rates/updates [post]
func (h *Handler) ScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	var req ScheduleUpdateRequest
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := decodeOptional(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	scope := normalizeCode(req.Currency)

	res, err := h.scheduler.Trigger(r.Context(), scope)
	if err != nil {
		if res.ExecID == "" {
			handleError(w, err, "ScheduleUpdate", "failed to run rate update", logrus.Fields{"currency": scope})
			return
		}
		// the cycle ran, the caller gets its report with the failure status
		writeJSON(w, statusFor(err), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetUpdateStatus godoc
// @Summary Scheduler status
// @Description Current state of the update scheduler with the last cycle report
// @Tags Rates
// @Produce json
// @Success 200 {object} rate.Status
// @Router /rates/updates/status [get]
func (h *Handler) GetUpdateStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Status())
}

func decodeOptional(body io.Reader, dst *ScheduleUpdateRequest) error {
	err := newStrictDecoder(body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
