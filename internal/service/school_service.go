package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type SchoolService interface {
	CreateSchool(ctx context.Context, req *models.CreateSchoolRequest) (*models.School, error)
	GetSchoolByID(ctx context.Context, id string) (*models.School, error)
	GetAllSchools(ctx context.Context) ([]models.School, error)
	DeleteSchool(ctx context.Context, id string) error
	// Authenticate resolves an API key to the school that owns it, or
	// ErrSchoolNotFound when the key is unknown.
	Authenticate(ctx context.Context, apiKey string) (*models.School, error)
}

type schoolService struct {
	schoolRepo repository.SchoolRepository
	logger     zerolog.Logger
}

func NewSchoolService(schoolRepo repository.SchoolRepository, logger zerolog.Logger) SchoolService {
	return &schoolService{
		schoolRepo: schoolRepo,
		logger:     logger,
	}
}

func (s *schoolService) CreateSchool(ctx context.Context, req *models.CreateSchoolRequest) (*models.School, error) {
	existing, err := s.schoolRepo.GetByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check school name: %w", err)
	}
	if existing != nil {
		return nil, ErrSchoolNameTaken
	}

	school := &models.School{
		ID:        uuid.New().String(),
		Name:      req.Name,
		APIKey:    uuid.New().String(),
		CreatedAt: time.Now(),
	}

	if err := s.schoolRepo.Create(ctx, school); err != nil {
		return nil, fmt.Errorf("failed to create school: %w", err)
	}

	s.logger.Info().
		Str("school_id", school.ID).
		Str("name", school.Name).
		Msg("School created")

	return school, nil
}

func (s *schoolService) GetSchoolByID(ctx context.Context, id string) (*models.School, error) {
	school, err := s.schoolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	if school == nil {
		return nil, ErrSchoolNotFound
	}

	return school, nil
}

func (s *schoolService) GetAllSchools(ctx context.Context) ([]models.School, error) {
	return s.schoolRepo.GetAll(ctx)
}

func (s *schoolService) DeleteSchool(ctx context.Context, id string) error {
	exists, err := s.schoolRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check school existence: %w", err)
	}
	if !exists {
		return ErrSchoolNotFound
	}

	// Submissions, assignments and reminder flags cascade with the row.
	if err := s.schoolRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete school: %w", err)
	}

	s.logger.Info().Str("school_id", id).Msg("School deleted")
	return nil
}

func (s *schoolService) Authenticate(ctx context.Context, apiKey string) (*models.School, error) {
	if apiKey == "" {
		return nil, ErrSchoolNotFound
	}

	school, err := s.schoolRepo.GetByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	if school == nil {
		return nil, ErrSchoolNotFound
	}

	return school, nil
}
