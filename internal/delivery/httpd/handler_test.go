package httpd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository/inmem"
	"github.com/HoangThiencm/autoreport/internal/service"
)

type handlerEnv struct {
	router  chi.Router
	schools service.SchoolService
	periods service.PeriodService
	tasks   service.TaskService
}

func setup(t *testing.T) *handlerEnv {
	t.Helper()
	return setupWithPinger(t, nil)
}

type deadPinger struct{}

func (deadPinger) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

func setupWithPinger(t *testing.T, pinger Pinger) *handlerEnv {
	t.Helper()

	db := inmem.New()
	if pinger == nil {
		pinger = db
	}
	log := zerolog.Nop()

	schoolRepo := inmem.NewSchoolRepository(db)
	periodRepo := inmem.NewPeriodRepository(db)
	taskRepo := inmem.NewTaskRepository(db)
	assignmentRepo := inmem.NewAssignmentRepository(db)
	submissionRepo := inmem.NewSubmissionRepository(db)
	reminderRepo := inmem.NewReminderRepository(db)

	schools := service.NewSchoolService(schoolRepo, log)
	periods := service.NewPeriodService(periodRepo, nil, log)
	tasks := service.NewTaskService(taskRepo, periodRepo, schoolRepo, assignmentRepo, submissionRepo, reminderRepo, log)
	submissions := service.NewSubmissionService(submissionRepo, taskRepo, schoolRepo, nil, log)
	status := service.NewStatusService(taskRepo, schoolRepo, assignmentRepo, submissionRepo, log)
	reminders := service.NewReminderService(status, reminderRepo, log)
	compliance := service.NewComplianceService(taskRepo, schoolRepo, assignmentRepo, submissionRepo, time.UTC, log)
	stats := service.NewStatsService(taskRepo, schoolRepo, periodRepo, log)
	maintenance := service.NewMaintenanceService(inmem.NewMaintenanceRepository(db), "letmein", log)

	handler := NewHandler(schools, periods, tasks, submissions, status, reminders, compliance, stats, maintenance, nil, pinger, log)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return &handlerEnv{router: router, schools: schools, periods: periods, tasks: tasks}
}

func (e *handlerEnv) request(t *testing.T, method, path, apiKey string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	env := setup(t)

	rec := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestHealthCheckReportsDatabaseOutage(t *testing.T) {
	env := setupWithPinger(t, deadPinger{})

	rec := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")
}

func TestCreateAndListSchools(t *testing.T) {
	env := setup(t)

	rec := env.request(t, http.MethodPost, "/api/v1/schools", "", map[string]string{"name": "Alpha"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var school models.School
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &school))
	assert.NotEmpty(t, school.ID)
	assert.NotEmpty(t, school.APIKey)

	rec = env.request(t, http.MethodGet, "/api/v1/schools", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alpha")
}

func TestCreateSchoolDuplicateName(t *testing.T) {
	env := setup(t)

	rec := env.request(t, http.MethodPost, "/api/v1/schools", "", map[string]string{"name": "Alpha"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/schools", "", map[string]string{"name": "Alpha"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSchoolsMeRequiresKey(t *testing.T) {
	env := setup(t)

	school, err := env.schools.CreateSchool(context.Background(), &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)

	rec := env.request(t, http.MethodGet, "/api/v1/schools/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/schools/me", school.APIKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), school.ID)
}

func TestSubmitFileEndToEnd(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	school, err := env.schools.CreateSchool(ctx, &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)

	period, err := env.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
		IsActive:  true,
	})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind:     "file",
		Title:    "Fire drill report",
		Deadline: time.Now().Add(24 * time.Hour),
		PeriodID: period.ID,
	})
	require.NoError(t, err)

	body := map[string]string{"file_url": "https://blobs/report.pdf"}

	rec := env.request(t, http.MethodPost, "/api/v1/tasks/"+task.ID+"/submissions", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/tasks/"+task.ID+"/submissions", school.APIKey, body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var sub models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, school.ID, sub.SchoolID)
	require.NotNil(t, sub.SubmittedAt)
}

func TestSubmitToLockedTaskReturns423(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	school, err := env.schools.CreateSchool(ctx, &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)

	period, err := env.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
	})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind:     "file",
		Title:    "Fire drill report",
		Deadline: time.Now().Add(24 * time.Hour),
		PeriodID: period.ID,
	})
	require.NoError(t, err)

	locked := true
	_, err = env.tasks.UpdateTask(ctx, task.ID, &models.UpdateTaskRequest{IsLocked: &locked})
	require.NoError(t, err)

	rec := env.request(t, http.MethodPost, "/api/v1/tasks/"+task.ID+"/submissions", school.APIKey,
		map[string]string{"file_url": "https://blobs/report.pdf"})
	assert.Equal(t, http.StatusLocked, rec.Code)
}

func TestExportRendersMissingCellsEmpty(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	school, err := env.schools.CreateSchool(ctx, &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)

	period, err := env.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
	})
	require.NoError(t, err)

	task, err := env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind:            "data",
		Title:           "Enrollment figures",
		Deadline:        time.Now().Add(24 * time.Hour),
		PeriodID:        period.ID,
		TargetSchoolIDs: []string{school.ID},
		Columns: []models.Column{
			{Name: "students", Title: "Students", DType: "number"},
			{Name: "notes", Title: "Notes", DType: "string"},
		},
	})
	require.NoError(t, err)

	// The row omits the notes column entirely.
	rec := env.request(t, http.MethodPost, "/api/v1/tasks/"+task.ID+"/data", school.APIKey,
		map[string]interface{}{"rows": []map[string]interface{}{{"students": 42}}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/tasks/"+task.ID+"/export", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Students,Notes")
	assert.Contains(t, rec.Body.String(), "42,")
	assert.NotContains(t, rec.Body.String(), "<nil>")
}

func TestComplianceSummaryParamValidation(t *testing.T) {
	env := setup(t)

	rec := env.request(t, http.MethodGet, "/api/v1/compliance/summary", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/compliance/summary?start=2026-01-01&end=not-a-date", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/compliance/summary?start=2026-01-01&end=2026-03-31&kind=spreadsheet", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/compliance/summary?start=2026-01-01&end=2026-03-31", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetRequiresPassword(t *testing.T) {
	env := setup(t)

	rec := env.request(t, http.MethodPost, "/api/v1/admin/reset", "", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/v1/admin/reset", "", map[string]string{"password": "letmein"})
	assert.Equal(t, http.StatusOK, rec.Code)
}
