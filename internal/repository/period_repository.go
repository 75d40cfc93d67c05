package repository

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type PeriodRepository interface {
	Create(ctx context.Context, period *models.Period) error
	GetByID(ctx context.Context, id string) (*models.Period, error)
	GetAll(ctx context.Context) ([]models.Period, error)
	GetActive(ctx context.Context) (*models.Period, error)
	Update(ctx context.Context, period *models.Period) error
	// SetActive marks one period active and deactivates every other period
	// in the same transaction, so at most one period is ever active.
	SetActive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type periodRepository struct {
	*PostgresRepository
}

func NewPeriodRepository(db *sql.DB, logger zerolog.Logger) PeriodRepository {
	return &periodRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *periodRepository) Create(ctx context.Context, period *models.Period) error {
	query := `
		INSERT INTO periods (id, name, start_date, end_date, is_active, folder_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		period.ID,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.IsActive,
		period.FolderID,
		period.CreatedAt,
	)

	return err
}

func (r *periodRepository) GetByID(ctx context.Context, id string) (*models.Period, error) {
	query := `
		SELECT id, name, start_date, end_date, is_active, folder_id, created_at
		FROM periods
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *periodRepository) GetActive(ctx context.Context) (*models.Period, error) {
	query := `
		SELECT id, name, start_date, end_date, is_active, folder_id, created_at
		FROM periods
		WHERE is_active = TRUE
		ORDER BY start_date DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

func (r *periodRepository) scanOne(row *sql.Row) (*models.Period, error) {
	period := &models.Period{}
	err := row.Scan(
		&period.ID,
		&period.Name,
		&period.StartDate,
		&period.EndDate,
		&period.IsActive,
		&period.FolderID,
		&period.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return period, err
}

func (r *periodRepository) GetAll(ctx context.Context) ([]models.Period, error) {
	query := `
		SELECT id, name, start_date, end_date, is_active, folder_id, created_at
		FROM periods
		ORDER BY start_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []models.Period
	for rows.Next() {
		var period models.Period
		err := rows.Scan(
			&period.ID,
			&period.Name,
			&period.StartDate,
			&period.EndDate,
			&period.IsActive,
			&period.FolderID,
			&period.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}

	return periods, rows.Err()
}

func (r *periodRepository) Update(ctx context.Context, period *models.Period) error {
	query := `
		UPDATE periods
		SET name = $1, start_date = $2, end_date = $3, is_active = $4, folder_id = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(ctx, query,
		period.Name,
		period.StartDate,
		period.EndDate,
		period.IsActive,
		period.FolderID,
		period.ID,
	)

	return err
}

func (r *periodRepository) SetActive(ctx context.Context, id string) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE periods SET is_active = FALSE WHERE id != $1`, id); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE periods SET is_active = TRUE WHERE id = $1`, id); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *periodRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM periods WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *periodRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM periods WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}
