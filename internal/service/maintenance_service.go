package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/repository"
)

type MaintenanceService interface {
	// ResetAll wipes every school, period, task and submission in one
	// transaction after verifying the caller knows the reset password.
	ResetAll(ctx context.Context, password string) error
}

type maintenanceService struct {
	repo          repository.MaintenanceRepository
	resetPassword string
	logger        zerolog.Logger
}

func NewMaintenanceService(repo repository.MaintenanceRepository, resetPassword string, logger zerolog.Logger) MaintenanceService {
	return &maintenanceService{repo: repo, resetPassword: resetPassword, logger: logger}
}

func (s *maintenanceService) ResetAll(ctx context.Context, password string) error {
	if s.resetPassword == "" || password != s.resetPassword {
		return ErrWrongPassword
	}

	if err := s.repo.ResetAll(ctx); err != nil {
		return fmt.Errorf("failed to reset database: %w", err)
	}

	s.logger.Warn().Msg("all application data has been wiped")
	return nil
}
