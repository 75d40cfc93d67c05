// Package inmem provides map-backed implementations of the repository
// interfaces. They back the service tests; production uses the Postgres
// implementations.
package inmem

import (
	"context"
	"sync"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type DB struct {
	mu          sync.RWMutex
	schools     map[string]models.School
	periods     map[string]models.Period
	tasks       map[string]models.Task
	assignments map[string]map[string]models.Assignment  // taskID -> schoolID
	submissions map[string]map[string]models.Submission  // taskID -> schoolID
	reminders   map[string]map[string]models.ReminderFlag // taskID -> schoolID
}

func New() *DB {
	db := &DB{}
	db.reset()
	return db
}

// Ping always succeeds; the maps cannot go away.
func (db *DB) Ping(ctx context.Context) error {
	return nil
}

func (db *DB) reset() {
	db.schools = make(map[string]models.School)
	db.periods = make(map[string]models.Period)
	db.tasks = make(map[string]models.Task)
	db.assignments = make(map[string]map[string]models.Assignment)
	db.submissions = make(map[string]map[string]models.Submission)
	db.reminders = make(map[string]map[string]models.ReminderFlag)
}

type maintenanceRepository struct {
	db *DB
}

func NewMaintenanceRepository(db *DB) repository.MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) ResetAll(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.reset()
	return nil
}
