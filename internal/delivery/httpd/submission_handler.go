package httpd

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

func (h *Handler) SubmitFile(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	school := currentSchool(r)
	if school == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "A valid X-API-Key header is required")
		return
	}

	var req models.SubmitFileRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FileURL == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "file_url is required")
		return
	}

	submission, err := h.submissionService.SubmitFile(r.Context(), taskID, school.ID, req.FileURL)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, submission)
}

func (h *Handler) SubmitData(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	school := currentSchool(r)
	if school == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "A valid X-API-Key header is required")
		return
	}

	var req models.SubmitDataRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	submission, err := h.submissionService.SubmitData(r.Context(), taskID, school.ID, req.Rows)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, submission)
}

func (h *Handler) GetMySubmission(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	school := currentSchool(r)
	if school == nil {
		utils.ErrorResponse(w, http.StatusUnauthorized, "A valid X-API-Key header is required")
		return
	}

	submission, err := h.submissionService.GetSubmission(r.Context(), taskID, school.ID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, submission)
}

func (h *Handler) GetSchoolSubmission(w http.ResponseWriter, r *http.Request) {
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

	submission, err := h.submissionService.GetSubmission(r.Context(), taskID, schoolID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, submission)
}

// ExportMergedRows streams the concatenated rows of every school as CSV,
// with the column order fixed by the task's schema.
func (h *Handler) ExportMergedRows(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.GetTaskByID(r.Context(), taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	rows, err := h.submissionService.MergedRows(r.Context(), taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", task.Title+".csv"))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(task.Columns))
	for _, col := range task.Columns {
		title := col.Title
		if title == "" {
			title = col.Name
		}
		header = append(header, title)
	}
	if err := writer.Write(header); err != nil {
		h.logger.Error().Err(err).Msg("Failed to write CSV header")
		return
	}

	for _, row := range rows {
		record := make([]string, 0, len(task.Columns))
		for _, col := range task.Columns {
			// A row may omit columns added after it was entered; render
			// those as empty cells rather than "<nil>".
			value := ""
			if v, ok := row[col.Name]; ok && v != nil {
				value = fmt.Sprint(v)
			}
			record = append(record, value)
		}
		if err := writer.Write(record); err != nil {
			h.logger.Error().Err(err).Msg("Failed to write CSV row")
			return
		}
	}
}

// DownloadAllSubmissions bundles every submitted file for a file-kind task
// into a single zip archive, one entry per school.
func (h *Handler) DownloadAllSubmissions(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(taskID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	status, err := h.statusService.TaskStatus(r.Context(), taskID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if status.Task.Kind != models.TaskKindFile {
		utils.ErrorResponse(w, http.StatusBadRequest, "Only file tasks can be downloaded as an archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", status.Task.Title+".zip"))

	archive := zip.NewWriter(w)
	defer archive.Close()

	for _, entry := range status.Submitted {
		if entry.FileURL == "" {
			continue
		}

		data, name, err := h.blobStore.Download(r.Context(), entry.FileURL)
		if err != nil {
			h.logger.Error().Err(err).
				Str("school_id", entry.SchoolID).
				Str("file_url", entry.FileURL).
				Msg("Failed to fetch submission file, skipping")
			continue
		}

		entryName := entry.Name + "/" + path.Base(name)
		f, err := archive.Create(entryName)
		if err != nil {
			h.logger.Error().Err(err).Str("entry", entryName).Msg("Failed to create archive entry")
			return
		}
		if _, err := f.Write(data); err != nil {
			h.logger.Error().Err(err).Str("entry", entryName).Msg("Failed to write archive entry")
			return
		}
	}
}
