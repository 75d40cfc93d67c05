package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
)

func TestCreateRemindersIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alpha := env.createSchool(t, "Alpha")
	env.createSchool(t, "Beta")

	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "data", period.ID, time.Now().Add(24*time.Hour))

	created, err := env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Same pending set, nothing new to flag.
	created, err = env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// Alpha submits; the repeat run still creates nothing because Beta is
	// already flagged.
	_, err = env.submissions.SubmitData(ctx, task.ID, alpha.ID, []models.Row{{"students": 5}})
	require.NoError(t, err)

	created, err = env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestIsRemindedReflectsFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	reminded, err := env.reminders.IsReminded(ctx, task.ID, school.ID)
	require.NoError(t, err)
	assert.False(t, reminded)

	_, err = env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)

	reminded, err = env.reminders.IsReminded(ctx, task.ID, school.ID)
	require.NoError(t, err)
	assert.True(t, reminded)
}

func TestReminderFlagDoesNotBlockSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour))

	_, err := env.reminders.CreateReminders(ctx, task.ID)
	require.NoError(t, err)

	_, err = env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/alpha.pdf")
	assert.NoError(t, err)
}
