package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
)

func TestSubmitFileUpsertsLatestWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	first, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/reports/v1.pdf")
	require.NoError(t, err)
	require.NotNil(t, first.SubmittedAt)

	second, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/reports/v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://blobs/reports/v2.pdf", second.FileURL)

	// Still exactly one row for the pair.
	subs, err := env.submissionRepo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://blobs/reports/v2.pdf", subs[0].FileURL)
}

func TestSubmitFileRejectsLockedTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	locked := true
	_, err := env.tasks.UpdateTask(ctx, task.ID, &models.UpdateTaskRequest{IsLocked: &locked})
	require.NoError(t, err)

	_, err = env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/reports/v1.pdf")
	assert.ErrorIs(t, err, ErrTaskLocked)
}

func TestSubmitFileRejectsWrongKind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/reports/v1.pdf")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSubmitDataRequiresPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	// Registered after the audience was frozen.
	outsider := env.createSchool(t, "Beta")

	_, err := env.submissions.SubmitData(ctx, task.ID, outsider.ID, []models.Row{{"students": 10}})
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestSubmitDataOverwritesRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitData(ctx, task.ID, school.ID, []models.Row{{"students": 10}})
	require.NoError(t, err)

	sub, err := env.submissions.SubmitData(ctx, task.ID, school.ID, []models.Row{{"students": 12}})
	require.NoError(t, err)
	require.Len(t, sub.Rows, 1)
	assert.Equal(t, 12, sub.Rows[0]["students"])
}

func TestAdminUpdateDataStampsPlaceholder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	sub, err := env.submissions.AdminUpdateData(ctx, task.ID, school.ID, []models.Row{{"students": 7}})
	require.NoError(t, err)

	require.NotNil(t, sub.SubmittedAt)
	assert.Equal(t, "admin", sub.LastEditedBy)
	require.NotNil(t, sub.LastEditedAt)
}

func TestMergedRowsSkipsPlaceholders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alpha := env.createSchool(t, "Alpha")
	env.createSchool(t, "Beta") // never submits
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitData(ctx, task.ID, alpha.ID, []models.Row{
		{"students": 10},
		{"students": 11},
	})
	require.NoError(t, err)

	rows, err := env.submissions.MergedRows(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestGetSubmissionUnknownPair(t *testing.T) {
	env := newTestEnv(t)

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.GetSubmission(context.Background(), task.ID, school.ID)
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
