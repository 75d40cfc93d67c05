package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type AssignmentRepository interface {
	CreateBatch(ctx context.Context, taskID string, schoolIDs []string) error
	SchoolIDsByTask(ctx context.Context, taskID string) ([]string, error)
	ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Assignment, error)
}

type assignmentRepository struct {
	*PostgresRepository
}

func NewAssignmentRepository(db *sql.DB, logger zerolog.Logger) AssignmentRepository {
	return &assignmentRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *assignmentRepository) CreateBatch(ctx context.Context, taskID string, schoolIDs []string) error {
	if len(schoolIDs) == 0 {
		return nil
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO task_assignments (task_id, school_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, school_id) DO NOTHING
	`

	now := time.Now()
	for _, schoolID := range schoolIDs {
		if _, err := tx.ExecContext(ctx, query, taskID, schoolID, now); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *assignmentRepository) SchoolIDsByTask(ctx context.Context, taskID string) ([]string, error) {
	query := `SELECT school_id FROM task_assignments WHERE task_id = $1`

	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *assignmentRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Assignment, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT task_id, school_id, created_at
		FROM task_assignments
		WHERE task_id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(taskIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.TaskID, &a.SchoolID, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
