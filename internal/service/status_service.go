package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type StatusService interface {
	// TaskStatus partitions the task's audience into submitted and
	// not-submitted. Every audience member lands in exactly one list.
	TaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error)
}

type statusService struct {
	taskRepo       repository.TaskRepository
	schoolRepo     repository.SchoolRepository
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	logger         zerolog.Logger
}

func NewStatusService(
	taskRepo repository.TaskRepository,
	schoolRepo repository.SchoolRepository,
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	logger zerolog.Logger,
) StatusService {
	return &statusService{
		taskRepo:       taskRepo,
		schoolRepo:     schoolRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		logger:         logger,
	}
}

func (s *statusService) TaskStatus(ctx context.Context, taskID string) (*models.TaskStatus, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	audience, err := resolveAudience(ctx, task, s.schoolRepo, s.assignmentRepo, s.submissionRepo)
	if err != nil {
		return nil, err
	}

	subs, err := s.submissionRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	bySchool := make(map[string]models.Submission, len(subs))
	for _, sub := range subs {
		bySchool[sub.SchoolID] = sub
	}

	status := &models.TaskStatus{
		Task:         *task,
		Submitted:    []models.SubmittedSchool{},
		NotSubmitted: []models.PendingSchool{},
	}

	for _, school := range audience {
		sub, ok := bySchool[school.ID]
		if ok && sub.SubmittedAt != nil {
			entry := models.SubmittedSchool{
				SchoolID:    school.ID,
				Name:        school.Name,
				SubmittedAt: *sub.SubmittedAt,
			}
			if task.Kind == models.TaskKindFile {
				entry.FileURL = sub.FileURL
			}
			status.Submitted = append(status.Submitted, entry)
		} else {
			status.NotSubmitted = append(status.NotSubmitted, models.PendingSchool{
				SchoolID: school.ID,
				Name:     school.Name,
			})
		}
	}

	return status, nil
}
