package inmem

import (
	"context"
	"time"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type reminderRepository struct {
	db *DB
}

func NewReminderRepository(db *DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, taskID, schoolID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	byTask := r.db.reminders[taskID]
	if byTask == nil {
		byTask = make(map[string]models.ReminderFlag)
		r.db.reminders[taskID] = byTask
	}

	if _, ok := byTask[schoolID]; ok {
		return false, nil
	}
	byTask[schoolID] = models.ReminderFlag{TaskID: taskID, SchoolID: schoolID, CreatedAt: time.Now()}
	return true, nil
}

func (r *reminderRepository) Exists(ctx context.Context, taskID, schoolID string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.reminders[taskID][schoolID]
	return ok, nil
}

func (r *reminderRepository) TaskIDsForSchool(ctx context.Context, schoolID string) (map[string]bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ids := make(map[string]bool)
	for taskID, byTask := range r.db.reminders {
		if _, ok := byTask[schoolID]; ok {
			ids[taskID] = true
		}
	}
	return ids, nil
}
