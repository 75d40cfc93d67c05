package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type StatsService interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type statsService struct {
	taskRepo   repository.TaskRepository
	schoolRepo repository.SchoolRepository
	periodRepo repository.PeriodRepository
	logger     zerolog.Logger
}

func NewStatsService(
	taskRepo repository.TaskRepository,
	schoolRepo repository.SchoolRepository,
	periodRepo repository.PeriodRepository,
	logger zerolog.Logger,
) StatsService {
	return &statsService{
		taskRepo:   taskRepo,
		schoolRepo: schoolRepo,
		periodRepo: periodRepo,
		logger:     logger,
	}
}

func (s *statsService) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := time.Now()

	overdueFiles, err := s.taskRepo.CountOverdueUnlocked(ctx, now, models.TaskKindFile)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue file tasks: %w", err)
	}

	overdueReports, err := s.taskRepo.CountOverdueUnlocked(ctx, now, models.TaskKindData)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue data tasks: %w", err)
	}

	schoolCount, err := s.schoolRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count schools: %w", err)
	}

	stats := &models.DashboardStats{
		OverdueFileTasks:   overdueFiles,
		OverdueDataReports: overdueReports,
		TotalSchools:       schoolCount,
	}

	active, err := s.periodRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active period: %w", err)
	}
	if active != nil {
		stats.ActivePeriodName = active.Name
	}

	return stats, nil
}
