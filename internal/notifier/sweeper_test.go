package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository/inmem"
	"github.com/HoangThiencm/autoreport/internal/service"
)

type recordingNotifier struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	recipient string
	subject   string
	body      string
}

func (n *recordingNotifier) Send(ctx context.Context, recipient, subject, htmlBody string) error {
	if n.fail {
		return errors.New("smtp down")
	}
	n.sent = append(n.sent, sentMail{recipient: recipient, subject: subject, body: htmlBody})
	return nil
}

type sweepEnv struct {
	tasks   service.TaskService
	status  service.StatusService
	schools service.SchoolService
	periods service.PeriodService
	subs    service.SubmissionService
	mailer  *recordingNotifier
	sweeper Sweeper
}

func newSweepEnv(t *testing.T) *sweepEnv {
	t.Helper()

	db := inmem.New()
	log := zerolog.Nop()

	schoolRepo := inmem.NewSchoolRepository(db)
	periodRepo := inmem.NewPeriodRepository(db)
	taskRepo := inmem.NewTaskRepository(db)
	assignmentRepo := inmem.NewAssignmentRepository(db)
	submissionRepo := inmem.NewSubmissionRepository(db)
	reminderRepo := inmem.NewReminderRepository(db)

	env := &sweepEnv{
		schools: service.NewSchoolService(schoolRepo, log),
		periods: service.NewPeriodService(periodRepo, nil, log),
		tasks:   service.NewTaskService(taskRepo, periodRepo, schoolRepo, assignmentRepo, submissionRepo, reminderRepo, log),
		subs:    service.NewSubmissionService(submissionRepo, taskRepo, schoolRepo, nil, log),
		status:  service.NewStatusService(taskRepo, schoolRepo, assignmentRepo, submissionRepo, log),
		mailer:  &recordingNotifier{},
	}
	env.sweeper = NewSweeper(env.tasks, env.status, env.mailer, nil, "admin@example.com", time.Minute, log)
	return env
}

func (e *sweepEnv) overdueTask(t *testing.T) *models.Task {
	t.Helper()
	ctx := context.Background()

	period, err := e.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
		IsActive:  true,
	})
	require.NoError(t, err)

	task, err := e.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind:     "file",
		Title:    "Annual safety audit",
		Deadline: time.Now().Add(-1 * time.Hour),
		PeriodID: period.ID,
	})
	require.NoError(t, err)
	return task
}

func TestSweepOnceNotifiesAndMarks(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	_, err := env.schools.CreateSchool(ctx, &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)
	task := env.overdueTask(t)

	sent, err := env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, env.mailer.sent, 1)
	assert.Equal(t, "admin@example.com", env.mailer.sent[0].recipient)
	assert.Contains(t, env.mailer.sent[0].subject, task.Title)
	assert.True(t, strings.Contains(env.mailer.sent[0].body, "Alpha"))

	// The flag is set, so the next sweep is a no-op.
	sent, err = env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}

func TestSweepRetriesAfterDeliveryFailure(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	_, err := env.schools.CreateSchool(ctx, &models.CreateSchoolRequest{Name: "Alpha"})
	require.NoError(t, err)
	env.overdueTask(t)

	env.mailer.fail = true
	sent, err := env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// Delivery failed, the flag stays unset and the next tick retries.
	env.mailer.fail = false
	sent, err = env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSweepSkipsFutureDeadlines(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	period, err := env.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 2, 0),
	})
	require.NoError(t, err)

	_, err = env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind:     "file",
		Title:    "Next month's census",
		Deadline: time.Now().Add(720 * time.Hour),
		PeriodID: period.ID,
	})
	require.NoError(t, err)

	sent, err := env.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, env.mailer.sent)
}
