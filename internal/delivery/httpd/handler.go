package httpd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/service"
	"github.com/HoangThiencm/autoreport/internal/service/integration"
	"github.com/HoangThiencm/autoreport/pkg/utils"
)

// Pinger reports storage liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	schoolService      service.SchoolService
	periodService      service.PeriodService
	taskService        service.TaskService
	submissionService  service.SubmissionService
	statusService      service.StatusService
	reminderService    service.ReminderService
	complianceService  service.ComplianceService
	statsService       service.StatsService
	maintenanceService service.MaintenanceService
	blobStore          integration.BlobStore
	pinger             Pinger
	logger             zerolog.Logger
}

func NewHandler(
	schoolService service.SchoolService,
	periodService service.PeriodService,
	taskService service.TaskService,
	submissionService service.SubmissionService,
	statusService service.StatusService,
	reminderService service.ReminderService,
	complianceService service.ComplianceService,
	statsService service.StatsService,
	maintenanceService service.MaintenanceService,
	blobStore integration.BlobStore,
	pinger Pinger,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		schoolService:      schoolService,
		periodService:      periodService,
		taskService:        taskService,
		submissionService:  submissionService,
		statusService:      statusService,
		reminderService:    reminderService,
		complianceService:  complianceService,
		statsService:       statsService,
		maintenanceService: maintenanceService,
		blobStore:          blobStore,
		pinger:             pinger,
		logger:             logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Use(h.SchoolAuth)

		api.Route("/schools", func(r chi.Router) {
			r.Post("/", h.CreateSchool)
			r.Get("/", h.GetAllSchools)
			r.Get("/me", h.GetCurrentSchool)
			r.Get("/{id}", h.GetSchoolByID)
			r.Delete("/{id}", h.DeleteSchool)
		})

		api.Route("/periods", func(r chi.Router) {
			r.Post("/", h.CreatePeriod)
			r.Get("/", h.GetAllPeriods)
			r.Get("/active", h.GetActivePeriod)
			r.Get("/{id}", h.GetPeriodByID)
			r.Put("/{id}", h.UpdatePeriod)
			r.Delete("/{id}", h.DeletePeriod)
		})

		api.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.CreateTask)
			r.Get("/", h.GetAllTasks)
			r.Get("/{id}", h.GetTaskByID)
			r.Put("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Get("/{id}/status", h.GetTaskStatus)
			r.Get("/{id}/download-all", h.DownloadAllSubmissions)
			r.Post("/{id}/submissions", h.SubmitFile)
			r.Post("/{id}/data", h.SubmitData)
			r.Get("/{id}/data/mine", h.GetMySubmission)
			r.Get("/{id}/data/{school_id}", h.GetSchoolSubmission)
			r.Get("/{id}/export", h.ExportMergedRows)
		})

		api.Get("/compliance/summary", h.GetComplianceSummary)

		api.Route("/admin", func(r chi.Router) {
			r.Post("/tasks/{id}/reminders", h.CreateReminders)
			r.Put("/tasks/{id}/data/{school_id}", h.AdminUpdateData)
			r.Post("/attachments", h.UploadAttachment)
			r.Get("/dashboard", h.GetDashboard)
			r.Post("/reset", h.ResetAll)
		})
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Health check failed")
		utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"service":   "autoreport",
			"timestamp": time.Now().UTC(),
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "autoreport",
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSchoolNotFound),
		errors.Is(err, service.ErrPeriodNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrSubmissionNotFound):
		utils.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTaskLocked):
		utils.ErrorResponse(w, http.StatusLocked, err.Error())
	case errors.Is(err, service.ErrSchoolNameTaken),
		errors.Is(err, service.ErrPeriodNameTaken):
		utils.ErrorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidTaskKind),
		errors.Is(err, service.ErrInvalidDeadline),
		errors.Is(err, service.ErrInvalidWindow):
		utils.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrUnauthorized):
		utils.ErrorResponse(w, http.StatusForbidden, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Service error")
		utils.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseTimeParam accepts RFC3339 and plain dates.
func parseTimeParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
