package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
	"github.com/HoangThiencm/autoreport/internal/service/integration"
)

type SubmissionService interface {
	// SubmitFile upserts a school's file response: a resubmission replaces
	// the URL and resets the submitted timestamp to now.
	SubmitFile(ctx context.Context, taskID, schoolID, fileURL string) (*models.Submission, error)
	// SubmitData records a school's data rows. The (task, school) pair must
	// already hold a placeholder; a school outside the resolved audience
	// cannot enroll itself by submitting.
	SubmitData(ctx context.Context, taskID, schoolID string, rows []models.Row) (*models.Submission, error)
	GetSubmission(ctx context.Context, taskID, schoolID string) (*models.Submission, error)
	// AdminUpdateData lets an operator edit a school's rows in place,
	// stamping the submission as submitted if it still was a placeholder.
	AdminUpdateData(ctx context.Context, taskID, schoolID string, rows []models.Row) (*models.Submission, error)
	// MergedRows concatenates the submitted rows of every school for a
	// data-kind task, for export.
	MergedRows(ctx context.Context, taskID string) ([]models.Row, error)
}

type submissionService struct {
	submissionRepo repository.SubmissionRepository
	taskRepo       repository.TaskRepository
	schoolRepo     repository.SchoolRepository
	events         integration.EventPublisher
	logger         zerolog.Logger
}

func NewSubmissionService(
	submissionRepo repository.SubmissionRepository,
	taskRepo repository.TaskRepository,
	schoolRepo repository.SchoolRepository,
	events integration.EventPublisher,
	logger zerolog.Logger,
) SubmissionService {
	return &submissionService{
		submissionRepo: submissionRepo,
		taskRepo:       taskRepo,
		schoolRepo:     schoolRepo,
		events:         events,
		logger:         logger,
	}
}

func (s *submissionService) SubmitFile(ctx context.Context, taskID, schoolID, fileURL string) (*models.Submission, error) {
	task, err := s.lookupUnlockedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Kind != models.TaskKindFile {
		return nil, ErrTaskNotFound
	}

	schoolExists, err := s.schoolRepo.Exists(ctx, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to check school existence: %w", err)
	}
	if !schoolExists {
		return nil, ErrSchoolNotFound
	}

	now := time.Now()
	sub := &models.Submission{
		ID:          uuid.New().String(),
		TaskID:      taskID,
		SchoolID:    schoolID,
		FileURL:     fileURL,
		SubmittedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.submissionRepo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.publishReceived(ctx, task, schoolID, now)

	s.logger.Info().
		Str("task_id", taskID).
		Str("school_id", schoolID).
		Msg("File submission recorded")

	return sub, nil
}

func (s *submissionService) SubmitData(ctx context.Context, taskID, schoolID string, rows []models.Row) (*models.Submission, error) {
	task, err := s.lookupUnlockedTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Kind != models.TaskKindData {
		return nil, ErrTaskNotFound
	}

	existing, err := s.submissionRepo.Get(ctx, taskID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if existing == nil {
		// No placeholder means the school is outside the audience.
		return nil, ErrSubmissionNotFound
	}

	now := time.Now()
	existing.Rows = rows
	existing.SubmittedAt = &now
	existing.UpdatedAt = now

	if err := s.submissionRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	s.publishReceived(ctx, task, schoolID, now)

	s.logger.Info().
		Str("task_id", taskID).
		Str("school_id", schoolID).
		Int("rows", len(rows)).
		Msg("Data submission recorded")

	return existing, nil
}

func (s *submissionService) GetSubmission(ctx context.Context, taskID, schoolID string) (*models.Submission, error) {
	sub, err := s.submissionRepo.Get(ctx, taskID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}

	return sub, nil
}

func (s *submissionService) AdminUpdateData(ctx context.Context, taskID, schoolID string, rows []models.Row) (*models.Submission, error) {
	existing, err := s.submissionRepo.Get(ctx, taskID, schoolID)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if existing == nil {
		return nil, ErrSubmissionNotFound
	}

	now := time.Now()
	existing.Rows = rows
	if existing.SubmittedAt == nil {
		existing.SubmittedAt = &now
	}
	existing.LastEditedBy = "admin"
	existing.LastEditedAt = &now
	existing.UpdatedAt = now

	if err := s.submissionRepo.Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	return existing, nil
}

func (s *submissionService) MergedRows(ctx context.Context, taskID string) ([]models.Row, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	subs, err := s.submissionRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	var merged []models.Row
	for _, sub := range subs {
		if sub.SubmittedAt == nil {
			continue
		}
		merged = append(merged, sub.Rows...)
	}

	return merged, nil
}

func (s *submissionService) lookupUnlockedTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	if task.IsLocked {
		return nil, ErrTaskLocked
	}

	return task, nil
}

func (s *submissionService) publishReceived(ctx context.Context, task *models.Task, schoolID string, at time.Time) {
	if s.events == nil {
		return
	}

	event := &models.SubmissionReceivedEvent{
		TaskID:      task.ID,
		SchoolID:    schoolID,
		Kind:        task.Kind.String(),
		SubmittedAt: at.Unix(),
	}
	if err := s.events.PublishSubmissionReceived(ctx, event); err != nil {
		s.logger.Error().Err(err).Msg("Failed to publish submission event")
	}
}
