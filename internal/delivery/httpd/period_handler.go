package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePeriodRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	period, err := h.periodService.CreatePeriod(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, period)
}

func (h *Handler) GetAllPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periodService.GetAllPeriods(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, periods)
}

func (h *Handler) GetActivePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodService.GetActivePeriod(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	if period == nil {
		utils.ErrorResponse(w, http.StatusNotFound, "no active period")
		return
	}

	utils.SuccessResponse(w, period)
}

func (h *Handler) GetPeriodByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period ID format")
		return
	}

	period, err := h.periodService.GetPeriodByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, period)
}

func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period ID format")
		return
	}

	var req models.UpdatePeriodRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	period, err := h.periodService.UpdatePeriod(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, period)
}

func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period ID format")
		return
	}

	if err := h.periodService.DeletePeriod(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
