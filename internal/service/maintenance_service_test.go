package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetAllRequiresPassword(t *testing.T) {
	env := newTestEnv(t)

	err := env.maintenance.ResetAll(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestResetAllWipesEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/alpha.pdf")
	require.NoError(t, err)

	require.NoError(t, env.maintenance.ResetAll(ctx, "letmein"))

	schools, err := env.schools.GetAllSchools(ctx)
	require.NoError(t, err)
	assert.Empty(t, schools)

	periods, err := env.periods.GetAllPeriods(ctx)
	require.NoError(t, err)
	assert.Empty(t, periods)

	tasks, err := env.tasks.GetAllTasks(ctx, "", "", "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createSchool(t, "Alpha")
	env.createSchool(t, "Beta")
	period := env.createPeriod(t, "2026 Q3", true)

	env.createTask(t, "file", period.ID, time.Now().Add(-2*time.Hour))
	env.createTask(t, "data", period.ID, time.Now().Add(-1*time.Hour))
	env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	stats, err := env.stats.DashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OverdueFileTasks)
	assert.Equal(t, 1, stats.OverdueDataReports)
	assert.Equal(t, 2, stats.TotalSchools)
	assert.Equal(t, "2026 Q3", stats.ActivePeriodName)
}
