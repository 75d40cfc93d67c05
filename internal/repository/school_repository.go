package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id string) (*models.School, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*models.School, error)
	GetByName(ctx context.Context, name string) (*models.School, error)
	GetAll(ctx context.Context) ([]models.School, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type schoolRepository struct {
	*PostgresRepository
}

func NewSchoolRepository(db *sql.DB, logger zerolog.Logger) SchoolRepository {
	return &schoolRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	query := `
		INSERT INTO schools (id, name, api_key, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query,
		school.ID,
		school.Name,
		school.APIKey,
		school.CreatedAt,
	)

	return err
}

func (r *schoolRepository) GetByID(ctx context.Context, id string) (*models.School, error) {
	return r.getOne(ctx, `SELECT id, name, api_key, created_at FROM schools WHERE id = $1`, id)
}

func (r *schoolRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.School, error) {
	return r.getOne(ctx, `SELECT id, name, api_key, created_at FROM schools WHERE api_key = $1`, apiKey)
}

func (r *schoolRepository) GetByName(ctx context.Context, name string) (*models.School, error) {
	return r.getOne(ctx, `SELECT id, name, api_key, created_at FROM schools WHERE name = $1`, name)
}

func (r *schoolRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.School, error) {
	school := &models.School{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&school.ID,
		&school.Name,
		&school.APIKey,
		&school.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return school, err
}

func (r *schoolRepository) GetAll(ctx context.Context) ([]models.School, error) {
	query := `
		SELECT id, name, api_key, created_at
		FROM schools
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schools []models.School
	for rows.Next() {
		var school models.School
		err := rows.Scan(
			&school.ID,
			&school.Name,
			&school.APIKey,
			&school.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		schools = append(schools, school)
	}

	return schools, rows.Err()
}

func (r *schoolRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM schools WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *schoolRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM schools WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *schoolRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM schools`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}
