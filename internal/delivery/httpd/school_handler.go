package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

func (h *Handler) CreateSchool(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSchoolRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	school, err := h.schoolService.CreateSchool(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, school)
}

func (h *Handler) GetAllSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.schoolService.GetAllSchools(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, schools)
}

func (h *Handler) GetSchoolByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid school ID format")
		return
	}

	school, err := h.schoolService.GetSchoolByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, school)
}

// GetCurrentSchool echoes the school owning the presented API key.
func (h *Handler) GetCurrentSchool(w http.ResponseWriter, r *http.Request) {
	school := currentSchool(r)
	if school == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "A valid X-API-Key header is required")
		return
	}

	utils.SuccessResponse(w, school)
}

func (h *Handler) DeleteSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid school ID format")
		return
	}

	if err := h.schoolService.DeleteSchool(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
