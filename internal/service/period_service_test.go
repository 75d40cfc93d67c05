package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
)

func TestSingleActivePeriod(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createPeriod(t, "2026 Q2", true)
	second := env.createPeriod(t, "2026 Q3", true)

	active, err := env.periods.GetActivePeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	reloaded, err := env.periods.GetPeriodByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestActivatePeriodViaUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	current := env.createPeriod(t, "2026 Q2", true)
	next := env.createPeriod(t, "2026 Q3", false)

	activate := true
	_, err := env.periods.UpdatePeriod(ctx, next.ID, &models.UpdatePeriodRequest{IsActive: &activate})
	require.NoError(t, err)

	active, err := env.periods.GetActivePeriod(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, next.ID, active.ID)

	reloaded, err := env.periods.GetPeriodByID(ctx, current.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestPeriodNameUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createPeriod(t, "2026 Q3", false)

	_, err := env.periods.CreatePeriod(ctx, &models.CreatePeriodRequest{
		Name:      "2026 Q3",
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 3, 0),
	})
	assert.ErrorIs(t, err, ErrPeriodNameTaken)
}

func TestDeletePeriodCascadesTasks(t *testing.T) {
	env := newTestEnv(t)

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2025-2026", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour), school.ID)

	require.NoError(t, env.periods.DeletePeriod(context.Background(), period.ID))

	_, err := env.tasks.GetTaskByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	sub, err := env.submissionRepo.Get(context.Background(), task.ID, school.ID)
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestDeletePeriodUnknown(t *testing.T) {
	env := newTestEnv(t)

	err := env.periods.DeletePeriod(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrPeriodNotFound)
}
