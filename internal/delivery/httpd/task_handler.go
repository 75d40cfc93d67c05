package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.PeriodID == "" {
		utils.ErrorResponse(w, http.StatusBadRequest, "period_id is required")
		return
	}
	if _, err := uuid.Parse(req.PeriodID); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period_id format")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, task)
}

// GetAllTasks lists tasks filtered by the optional period_id and kind query
// parameters. When the caller presented a school API key, the list is scoped
// to that school's audience and decorated with its submitted/reminded flags.
func (h *Handler) GetAllTasks(w http.ResponseWriter, r *http.Request) {
	periodID := r.URL.Query().Get("period_id")
	kind := r.URL.Query().Get("kind")

	if periodID != "" {
		if _, err := uuid.Parse(periodID); err != nil {
			utils.ErrorResponse(w, http.StatusBadRequest, "Invalid period_id format")
			return
		}
	}
	if kind != "" && !models.IsValidTaskKind(kind) {
		utils.ErrorResponse(w, http.StatusBadRequest, "kind must be 'file' or 'data'")
		return
	}

	var schoolID string
	if school := currentSchool(r); school != nil {
		schoolID = school.ID
	}

	tasks, err := h.taskService.GetAllTasks(r.Context(), periodID, kind, schoolID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, models.TasksResponse{Tasks: tasks, Total: len(tasks)})
}

func (h *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	task, err := h.taskService.GetTaskByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, task)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	var req models.UpdateTaskRequest
	if err := utils.ReadJSON(r, &req); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, &req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.ErrorResponse(w, http.StatusBadRequest, "Invalid task ID format")
		return
	}

	status, err := h.statusService.TaskStatus(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	utils.SuccessResponse(w, status)
}
