package httpd

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/service"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

// GetComplianceSummary reports which schools were on time, late or missing
// across the deadline window [start, end].
func (h *Handler) GetComplianceSummary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	startParam := query.Get("start")
	endParam := query.Get("end")
	if startParam == "" || endParam == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "start and end are required")
		return
	}

	start, err := parseTimeParam(startParam)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid start timestamp")
		return
	}
	end, err := parseTimeParam(endParam)
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid end timestamp")
		return
	}

	periodID := query.Get("period_id")
	if periodID != "" {
		if _, err := uuid.Parse(periodID); err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period_id format")
			return
		}
	}

	kind, err := service.ParseSummaryKind(query.Get("kind"))
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "kind must be 'file', 'data' or 'both'")
		return
	}

	summary, err := h.complianceService.Summary(r.Context(), start, end, periodID, kind)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, summary)
}
