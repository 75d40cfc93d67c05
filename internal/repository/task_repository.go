package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id string) (*models.Task, error)
	GetAll(ctx context.Context, periodID, kind string) ([]models.Task, error)
	// ListByDeadlineWindow returns tasks of the given kinds whose deadline
	// falls within [start, end] inclusive, optionally filtered by period.
	ListByDeadlineWindow(ctx context.Context, start, end time.Time, periodID string, kinds []models.TaskKind) ([]models.Task, error)
	ListOverdueUnnotified(ctx context.Context, now time.Time) ([]models.Task, error)
	MarkNotificationSent(ctx context.Context, id string) error
	CountOverdueUnlocked(ctx context.Context, now time.Time, kind models.TaskKind) (int, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type taskRepository struct {
	*PostgresRepository
}

func NewTaskRepository(db *sql.DB, logger zerolog.Logger) TaskRepository {
	return &taskRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const taskColumns = `id, kind, title, content, deadline, period_id, is_locked,
	notification_sent, attachment_url, columns_schema, template_rows, created_at, updated_at`

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	columnsJSON, rowsJSON, err := marshalTaskSchema(task)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = r.db.ExecContext(ctx, query,
		task.ID,
		task.Kind,
		task.Title,
		task.Content,
		task.Deadline,
		task.PeriodID,
		task.IsLocked,
		task.NotificationSent,
		task.AttachmentURL,
		columnsJSON,
		rowsJSON,
		task.CreatedAt,
		task.UpdatedAt,
	)

	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return task, err
}

func (r *taskRepository) GetAll(ctx context.Context, periodID, kind string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}

	if periodID != "" {
		args = append(args, periodID)
		query += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	if kind != "" {
		args = append(args, kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	query += " ORDER BY deadline DESC"

	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) ListByDeadlineWindow(ctx context.Context, start, end time.Time, periodID string, kinds []models.TaskKind) ([]models.Task, error) {
	kindStrs := make([]string, 0, len(kinds))
	for _, k := range kinds {
		kindStrs = append(kindStrs, k.String())
	}

	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE deadline >= $1 AND deadline <= $2 AND kind = ANY($3)`
	args := []interface{}{start, end, pq.Array(kindStrs)}

	if periodID != "" {
		args = append(args, periodID)
		query += fmt.Sprintf(" AND period_id = $%d", len(args))
	}
	query += " ORDER BY deadline"

	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) ListOverdueUnnotified(ctx context.Context, now time.Time) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE deadline < $1 AND notification_sent = FALSE
		ORDER BY deadline`

	return r.queryTasks(ctx, query, now)
}

func (r *taskRepository) MarkNotificationSent(ctx context.Context, id string) error {
	query := `UPDATE tasks SET notification_sent = TRUE, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	return err
}

func (r *taskRepository) CountOverdueUnlocked(ctx context.Context, now time.Time, kind models.TaskKind) (int, error) {
	query := `SELECT COUNT(*) FROM tasks WHERE deadline < $1 AND is_locked = FALSE AND kind = $2`
	var count int
	err := r.db.QueryRowContext(ctx, query, now, kind).Scan(&count)
	return count, err
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	columnsJSON, rowsJSON, err := marshalTaskSchema(task)
	if err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, content = $2, deadline = $3, period_id = $4, is_locked = $5,
			notification_sent = $6, attachment_url = $7, columns_schema = $8,
			template_rows = $9, updated_at = $10
		WHERE id = $11
	`

	_, err = r.db.ExecContext(ctx, query,
		task.Title,
		task.Content,
		task.Deadline,
		task.PeriodID,
		task.IsLocked,
		task.NotificationSent,
		task.AttachmentURL,
		columnsJSON,
		rowsJSON,
		task.UpdatedAt,
		task.ID,
	)

	return err
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *taskRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var columnsJSON, rowsJSON []byte

	err := row.Scan(
		&task.ID,
		&task.Kind,
		&task.Title,
		&task.Content,
		&task.Deadline,
		&task.PeriodID,
		&task.IsLocked,
		&task.NotificationSent,
		&task.AttachmentURL,
		&columnsJSON,
		&rowsJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(columnsJSON) > 0 {
		if err := json.Unmarshal(columnsJSON, &task.Columns); err != nil {
			return nil, fmt.Errorf("failed to decode columns schema: %w", err)
		}
	}
	if len(rowsJSON) > 0 {
		if err := json.Unmarshal(rowsJSON, &task.TemplateRows); err != nil {
			return nil, fmt.Errorf("failed to decode template rows: %w", err)
		}
	}

	return task, nil
}

func marshalTaskSchema(task *models.Task) ([]byte, []byte, error) {
	var columnsJSON, rowsJSON []byte
	var err error

	if task.Columns != nil {
		columnsJSON, err = json.Marshal(task.Columns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode columns schema: %w", err)
		}
	}
	if task.TemplateRows != nil {
		rowsJSON, err = json.Marshal(task.TemplateRows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode template rows: %w", err)
		}
	}

	return columnsJSON, rowsJSON, nil
}
