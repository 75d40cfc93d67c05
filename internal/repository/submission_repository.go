package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type SubmissionRepository interface {
	// Save upserts on (task_id, school_id): a resubmission replaces the
	// payload and timestamps of the existing row.
	Save(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, taskID, schoolID string) (*models.Submission, error)
	ListByTask(ctx context.Context, taskID string) ([]models.Submission, error)
	ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Submission, error)
	SubmittedTaskIDs(ctx context.Context, schoolID string) (map[string]bool, error)
	// CreatePlaceholders inserts one unsubmitted row per school, seeded with
	// the given rows; pairs that already have a row are left untouched.
	CreatePlaceholders(ctx context.Context, taskID string, schoolIDs []string, seed []models.Row) error
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const submissionColumns = `id, task_id, school_id, file_url, rows, submitted_at,
	last_edited_by, last_edited_at, created_at, updated_at`

func (r *submissionRepository) Save(ctx context.Context, sub *models.Submission) error {
	rowsJSON, err := marshalRows(sub.Rows)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (task_id, school_id) DO UPDATE SET
			file_url = EXCLUDED.file_url,
			rows = EXCLUDED.rows,
			submitted_at = EXCLUDED.submitted_at,
			last_edited_by = EXCLUDED.last_edited_by,
			last_edited_at = EXCLUDED.last_edited_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.TaskID,
		sub.SchoolID,
		sub.FileURL,
		rowsJSON,
		sub.SubmittedAt,
		sub.LastEditedBy,
		sub.LastEditedAt,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	return err
}

func (r *submissionRepository) Get(ctx context.Context, taskID, schoolID string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE task_id = $1 AND school_id = $2`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, taskID, schoolID))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return sub, err
}

func (r *submissionRepository) ListByTask(ctx context.Context, taskID string) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE task_id = $1`
	return r.querySubmissions(ctx, query, taskID)
}

func (r *submissionRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Submission, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE task_id = ANY($1)`
	return r.querySubmissions(ctx, query, pq.Array(taskIDs))
}

func (r *submissionRepository) SubmittedTaskIDs(ctx context.Context, schoolID string) (map[string]bool, error) {
	query := `
		SELECT DISTINCT task_id
		FROM submissions
		WHERE school_id = $1 AND submitted_at IS NOT NULL
	`

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

func (r *submissionRepository) CreatePlaceholders(ctx context.Context, taskID string, schoolIDs []string, seed []models.Row) error {
	if len(schoolIDs) == 0 {
		return nil
	}

	rowsJSON, err := marshalRows(seed)
	if err != nil {
		return err
	}

	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (id, task_id, school_id, file_url, rows, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, NULL, $5, $5)
		ON CONFLICT (task_id, school_id) DO NOTHING
	`

	now := time.Now()
	for _, schoolID := range schoolIDs {
		if _, err := tx.ExecContext(ctx, query, uuid.New().String(), taskID, schoolID, rowsJSON, now); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *submissionRepository) querySubmissions(ctx context.Context, query string, args ...interface{}) ([]models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}

	return subs, rows.Err()
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	sub := &models.Submission{}
	var rowsJSON []byte
	var lastEditedBy sql.NullString

	err := row.Scan(
		&sub.ID,
		&sub.TaskID,
		&sub.SchoolID,
		&sub.FileURL,
		&rowsJSON,
		&sub.SubmittedAt,
		&lastEditedBy,
		&sub.LastEditedAt,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.LastEditedBy = lastEditedBy.String
	if len(rowsJSON) > 0 {
		if err := json.Unmarshal(rowsJSON, &sub.Rows); err != nil {
			return nil, fmt.Errorf("failed to decode submission rows: %w", err)
		}
	}

	return sub, nil
}

func marshalRows(rows []models.Row) ([]byte, error) {
	if rows == nil {
		return nil, nil
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to encode submission rows: %w", err)
	}
	return data, nil
}
