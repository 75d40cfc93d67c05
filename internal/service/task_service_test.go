package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
)

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	period := env.createPeriod(t, "2026 Q3", true)

	_, err := env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind: "spreadsheet", Title: "x", Deadline: time.Now(), PeriodID: period.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidTaskKind)

	_, err = env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind: "file", Title: "x", PeriodID: period.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidDeadline)

	_, err = env.tasks.CreateTask(ctx, &models.CreateTaskRequest{
		Kind: "file", Title: "x", Deadline: time.Now(),
		PeriodID: "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}

func TestCreateDataTaskMaterializesPlaceholders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createSchool(t, "Alpha")
	env.createSchool(t, "Beta")
	period := env.createPeriod(t, "2026 Q3", true)

	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	subs, err := env.submissionRepo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	for _, sub := range subs {
		assert.Nil(t, sub.SubmittedAt)
	}
}

func TestCreateTaskPersistsExplicitAudience(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alpha := env.createSchool(t, "Alpha")
	env.createSchool(t, "Beta")
	period := env.createPeriod(t, "2026 Q3", true)

	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour), alpha.ID)

	assigned, err := env.assignmentRepo.SchoolIDsByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, alpha.ID, assigned[0])
}

func TestGetAllTasksScopedToSchool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alpha := env.createSchool(t, "Alpha")
	beta := env.createSchool(t, "Beta")
	period := env.createPeriod(t, "2026 Q3", true)

	env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour), alpha.ID)
	open := env.createTask(t, "file", period.ID, time.Now().Add(48*time.Hour))

	betaTasks, err := env.tasks.GetAllTasks(ctx, "", "", beta.ID)
	require.NoError(t, err)
	require.Len(t, betaTasks, 1)
	assert.Equal(t, open.ID, betaTasks[0].Task.ID)

	alphaTasks, err := env.tasks.GetAllTasks(ctx, "", "", alpha.ID)
	require.NoError(t, err)
	assert.Len(t, alphaTasks, 2)
}

func TestGetAllTasksDecoratesFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/alpha.pdf")
	require.NoError(t, err)

	tasks, err := env.tasks.GetAllTasks(ctx, "", "", school.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsSubmitted)
	assert.False(t, tasks[0].IsReminded)
}

func TestGetAllTasksFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q3 := env.createPeriod(t, "2026 Q3", true)
	q2 := env.createPeriod(t, "2026 Q2", false)

	env.createTask(t, "file", q3.ID, time.Now().Add(24*time.Hour))
	env.createTask(t, "data", q3.ID, time.Now().Add(24*time.Hour))
	env.createTask(t, "file", q2.ID, time.Now().Add(24*time.Hour))

	byPeriod, err := env.tasks.GetAllTasks(ctx, q3.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, byPeriod, 2)

	byKind, err := env.tasks.GetAllTasks(ctx, q3.ID, "data", "")
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, models.TaskKindData, byKind[0].Task.Kind)
}

func TestDeleteTaskCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitData(ctx, task.ID, school.ID, []models.Row{{"students": 3}})
	require.NoError(t, err)
	_, err = env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteTask(ctx, task.ID))

	_, err = env.tasks.GetTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	subs, err := env.submissionRepo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestUpdateTaskPartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	title := "Renamed report"
	updated, err := env.tasks.UpdateTask(ctx, task.ID, &models.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Renamed report", updated.Title)
	assert.Equal(t, task.Deadline.Unix(), updated.Deadline.Unix())
	assert.Equal(t, task.PeriodID, updated.PeriodID)
}
