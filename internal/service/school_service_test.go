package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HoangThiencm/autoreport/internal/models"
)

func TestCreateSchoolIssuesAPIKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	require.NotEmpty(t, school.APIKey)

	authed, err := env.schools.Authenticate(ctx, school.APIKey)
	require.NoError(t, err)
	assert.Equal(t, school.ID, authed.ID)
}

func TestCreateSchoolNameUniqueness(t *testing.T) {
	env := newTestEnv(t)

	env.createSchool(t, "Alpha")

	_, err := env.schools.CreateSchool(context.Background(), &models.CreateSchoolRequest{Name: "Alpha"})
	assert.ErrorIs(t, err, ErrSchoolNameTaken)
}

func TestAuthenticateUnknownKey(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.schools.Authenticate(context.Background(), "not-a-key")
	assert.ErrorIs(t, err, ErrSchoolNotFound)

	_, err = env.schools.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestDeleteSchoolCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	school := env.createSchool(t, "Alpha")
	period := env.createPeriod(t, "2026 Q3", true)
	task := env.createTask(t, "file", period.ID, time.Now().Add(24*time.Hour), school.ID)

	_, err := env.submissions.SubmitFile(ctx, task.ID, school.ID, "https://blobs/alpha.pdf")
	require.NoError(t, err)

	require.NoError(t, env.schools.DeleteSchool(ctx, school.ID))

	subs, err := env.submissionRepo.ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	assigned, err := env.assignmentRepo.SchoolIDsByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, assigned)
}
