package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
	"github.com/HoangThiencm/autoreport/internal/repository/inmem"
)

// testEnv wires every service over the in-memory repositories.
type testEnv struct {
	db *inmem.DB

	schoolRepo     repository.SchoolRepository
	periodRepo     repository.PeriodRepository
	taskRepo       repository.TaskRepository
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	reminderRepo   repository.ReminderRepository

	schools     SchoolService
	periods     PeriodService
	tasks       TaskService
	submissions SubmissionService
	status      StatusService
	reminders   ReminderService
	compliance  ComplianceService
	stats       StatsService
	maintenance MaintenanceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := inmem.New()
	log := zerolog.Nop()

	env := &testEnv{
		db:             db,
		schoolRepo:     inmem.NewSchoolRepository(db),
		periodRepo:     inmem.NewPeriodRepository(db),
		taskRepo:       inmem.NewTaskRepository(db),
		assignmentRepo: inmem.NewAssignmentRepository(db),
		submissionRepo: inmem.NewSubmissionRepository(db),
		reminderRepo:   inmem.NewReminderRepository(db),
	}

	env.schools = NewSchoolService(env.schoolRepo, log)
	env.periods = NewPeriodService(env.periodRepo, nil, log)
	env.tasks = NewTaskService(env.taskRepo, env.periodRepo, env.schoolRepo, env.assignmentRepo, env.submissionRepo, env.reminderRepo, log)
	env.submissions = NewSubmissionService(env.submissionRepo, env.taskRepo, env.schoolRepo, nil, log)
	env.status = NewStatusService(env.taskRepo, env.schoolRepo, env.assignmentRepo, env.submissionRepo, log)
	env.reminders = NewReminderService(env.status, env.reminderRepo, log)
	env.compliance = NewComplianceService(env.taskRepo, env.schoolRepo, env.assignmentRepo, env.submissionRepo, time.UTC, log)
	env.stats = NewStatsService(env.taskRepo, env.schoolRepo, env.periodRepo, log)
	env.maintenance = NewMaintenanceService(inmem.NewMaintenanceRepository(db), "letmein", log)

	return env
}

func (e *testEnv) createSchool(t *testing.T, name string) *models.School {
	t.Helper()

	school, err := e.schools.CreateSchool(context.Background(), &models.CreateSchoolRequest{Name: name})
	require.NoError(t, err)
	return school
}

func (e *testEnv) createPeriod(t *testing.T, name string, active bool) *models.Period {
	t.Helper()

	period, err := e.periods.CreatePeriod(context.Background(), &models.CreatePeriodRequest{
		Name:      name,
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
		IsActive:  active,
	})
	require.NoError(t, err)
	return period
}

func (e *testEnv) createTask(t *testing.T, kind, periodID string, deadline time.Time, targets ...string) *models.Task {
	t.Helper()

	req := &models.CreateTaskRequest{
		Kind:            kind,
		Title:           "Quarterly report " + kind,
		Deadline:        deadline,
		PeriodID:        periodID,
		TargetSchoolIDs: targets,
	}
	if kind == "data" {
		req.Columns = []models.Column{
			{Name: "students", Title: "Student count", DType: "int", Required: true},
		}
	}

	task, err := e.tasks.CreateTask(context.Background(), req)
	require.NoError(t, err)
	return task
}

// submitAt force-writes a submission with a fixed timestamp, bypassing the
// service layer's "now".
func (e *testEnv) submitAt(t *testing.T, taskID, schoolID string, at time.Time) {
	t.Helper()

	sub, err := e.submissionRepo.Get(context.Background(), taskID, schoolID)
	require.NoError(t, err)
	if sub == nil {
		sub = &models.Submission{
			ID:       taskID + ":" + schoolID,
			TaskID:   taskID,
			SchoolID: schoolID,
		}
	}
	sub.SubmittedAt = &at
	require.NoError(t, e.submissionRepo.Save(context.Background(), sub))
}
