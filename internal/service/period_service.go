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

type PeriodService interface {
	CreatePeriod(ctx context.Context, req *models.CreatePeriodRequest) (*models.Period, error)
	GetPeriodByID(ctx context.Context, id string) (*models.Period, error)
	GetAllPeriods(ctx context.Context) ([]models.Period, error)
	GetActivePeriod(ctx context.Context) (*models.Period, error)
	UpdatePeriod(ctx context.Context, id string, req *models.UpdatePeriodRequest) (*models.Period, error)
	DeletePeriod(ctx context.Context, id string) error
}

type periodService struct {
	periodRepo repository.PeriodRepository
	blobStore  integration.BlobStore
	logger     zerolog.Logger
}

func NewPeriodService(periodRepo repository.PeriodRepository, blobStore integration.BlobStore, logger zerolog.Logger) PeriodService {
	return &periodService{
		periodRepo: periodRepo,
		blobStore:  blobStore,
		logger:     logger,
	}
}

func (s *periodService) CreatePeriod(ctx context.Context, req *models.CreatePeriodRequest) (*models.Period, error) {
	existing, err := s.findByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPeriodNameTaken
	}

	period := &models.Period{
		ID:        uuid.New().String(),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  req.IsActive,
		CreatedAt: time.Now(),
	}

	// Folder provisioning is best-effort: the tracking core stays usable
	// when the blob backend is down.
	if s.blobStore != nil {
		folderID, err := s.blobStore.CreateOrGetFolder(ctx, req.Name, "")
		if err != nil {
			s.logger.Error().Err(err).Str("period", req.Name).Msg("Failed to provision period folder")
		} else {
			period.FolderID = folderID
		}
	}

	if err := s.periodRepo.Create(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to create period: %w", err)
	}

	if period.IsActive {
		if err := s.periodRepo.SetActive(ctx, period.ID); err != nil {
			return nil, fmt.Errorf("failed to activate period: %w", err)
		}
	}

	s.logger.Info().
		Str("period_id", period.ID).
		Str("name", period.Name).
		Msg("Period created")

	return period, nil
}

func (s *periodService) GetPeriodByID(ctx context.Context, id string) (*models.Period, error) {
	period, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get period: %w", err)
	}
	if period == nil {
		return nil, ErrPeriodNotFound
	}

	return period, nil
}

func (s *periodService) GetAllPeriods(ctx context.Context) ([]models.Period, error) {
	return s.periodRepo.GetAll(ctx)
}

func (s *periodService) GetActivePeriod(ctx context.Context) (*models.Period, error) {
	return s.periodRepo.GetActive(ctx)
}

func (s *periodService) UpdatePeriod(ctx context.Context, id string, req *models.UpdatePeriodRequest) (*models.Period, error) {
	period, err := s.GetPeriodByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != period.Name {
		existing, err := s.findByName(ctx, *req.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPeriodNameTaken
		}
		period.Name = *req.Name
	}
	if req.StartDate != nil {
		period.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		period.EndDate = *req.EndDate
	}

	if err := s.periodRepo.Update(ctx, period); err != nil {
		return nil, fmt.Errorf("failed to update period: %w", err)
	}

	if req.IsActive != nil && *req.IsActive {
		if err := s.periodRepo.SetActive(ctx, period.ID); err != nil {
			return nil, fmt.Errorf("failed to activate period: %w", err)
		}
		period.IsActive = true
	}

	return period, nil
}

func (s *periodService) DeletePeriod(ctx context.Context, id string) error {
	period, err := s.periodRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get period: %w", err)
	}
	if period == nil {
		return ErrPeriodNotFound
	}

	if err := s.periodRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete period: %w", err)
	}

	s.logger.Info().Str("period_id", id).Msg("Period deleted")
	return nil
}

func (s *periodService) findByName(ctx context.Context, name string) (*models.Period, error) {
	periods, err := s.periodRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	for i := range periods {
		if periods[i].Name == name {
			return &periods[i], nil
		}
	}
	return nil, nil
}
