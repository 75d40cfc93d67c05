package httpd

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

// CreateReminders flags every not-yet-submitted school on a task. The
// response reports how many schools were newly flagged; repeating the call
// without new submissions reports zero.
func (h *Handler) CreateReminders(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	created, err := h.reminderService.CreateReminders(r.Context(), taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, map[string]int{"reminded": created})
}

func (h *Handler) AdminUpdateData(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	schoolID := chi.URLParam(r, "school_id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}
	if _, err := uuid.Parse(schoolID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid school ID format")
		return
	}

	var req models.SubmitDataRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.submissionService.AdminUpdateData(r.Context(), taskID, schoolID, req.Rows)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, submission)
}

// UploadAttachment stores a multipart file in the blob store and returns the
// public URL to reference from a task's attachment_url.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	folder := r.FormValue("folder")
	if folder == "" {
		folder = "attachments"
	}

	url, err := h.blobStore.Upload(r.Context(), content, header.Filename, folder)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upload attachment")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload attachment")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.DashboardStats(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, stats)
}

func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	var req models.ResetRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.maintenanceService.ResetAll(r.Context(), req.Password); err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
