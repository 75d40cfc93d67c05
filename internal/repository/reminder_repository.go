package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
)

type ReminderRepository interface {
	// Create inserts a reminder flag for (task, school) and reports whether
	// a new row was actually created. Creating an existing flag is a no-op.
	Create(ctx context.Context, taskID, schoolID string) (bool, error)
	Exists(ctx context.Context, taskID, schoolID string) (bool, error)
	TaskIDsForSchool(ctx context.Context, schoolID string) (map[string]bool, error)
}

type reminderRepository struct {
	*PostgresRepository
}

func NewReminderRepository(db *sql.DB, logger zerolog.Logger) ReminderRepository {
	return &reminderRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *reminderRepository) Create(ctx context.Context, taskID, schoolID string) (bool, error) {
	query := `
		INSERT INTO reminder_flags (task_id, school_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (task_id, school_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, taskID, schoolID, time.Now())
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *reminderRepository) Exists(ctx context.Context, taskID, schoolID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reminder_flags WHERE task_id = $1 AND school_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, taskID, schoolID).Scan(&exists)
	return exists, err
}

func (r *reminderRepository) TaskIDsForSchool(ctx context.Context, schoolID string) (map[string]bool, error) {
	query := `SELECT task_id FROM reminder_flags WHERE school_id = $1`

	rows, err := r.db.QueryContext(ctx, query, schoolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}
