package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

type MaintenanceRepository interface {
	// ResetAll wipes every table inside one transaction, children before
	// parents. A failure at any step rolls the whole wipe back.
	ResetAll(ctx context.Context) error
}

type maintenanceRepository struct {
	*PostgresRepository
}

func NewMaintenanceRepository(db *sql.DB, logger zerolog.Logger) MaintenanceRepository {
	return &maintenanceRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *maintenanceRepository) ResetAll(ctx context.Context) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}

	tables := []string{
		"reminder_flags",
		"submissions",
		"task_assignments",
		"tasks",
		"schools",
		"periods",
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to wipe %s: %w", table, err)
		}
	}

	return tx.Commit()
}
