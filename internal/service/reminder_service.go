package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/repository"
)

type ReminderService interface {
	// CreateReminders flags every school that has not submitted yet and
	// returns how many new flags were created. Calling it again with no
	// intervening submissions returns 0.
	CreateReminders(ctx context.Context, taskID string) (int, error)
	// IsReminded is a display-only existence check; it grants nothing.
	IsReminded(ctx context.Context, taskID, schoolID string) (bool, error)
}

type reminderService struct {
	statusService StatusService
	reminderRepo  repository.ReminderRepository
	logger        zerolog.Logger
}

func NewReminderService(statusService StatusService, reminderRepo repository.ReminderRepository, logger zerolog.Logger) ReminderService {
	return &reminderService{
		statusService: statusService,
		reminderRepo:  reminderRepo,
		logger:        logger,
	}
}

func (s *reminderService) CreateReminders(ctx context.Context, taskID string) (int, error) {
	status, err := s.statusService.TaskStatus(ctx, taskID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, school := range status.NotSubmitted {
		created, err := s.reminderRepo.Create(ctx, taskID, school.SchoolID)
		if err != nil {
			return count, fmt.Errorf("failed to create reminder flag: %w", err)
		}
		if created {
			count++
		}
	}

	s.logger.Info().
		Str("task_id", taskID).
		Int("created", count).
		Int("pending", len(status.NotSubmitted)).
		Msg("Reminder flags created")

	return count, nil
}

func (s *reminderService) IsReminded(ctx context.Context, taskID, schoolID string) (bool, error) {
	return s.reminderRepo.Exists(ctx, taskID, schoolID)
}
