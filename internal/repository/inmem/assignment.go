package inmem

import (
	"context"
	"time"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type assignmentRepository struct {
	db *DB
}

func NewAssignmentRepository(db *DB) repository.AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) CreateBatch(ctx context.Context, taskID string, schoolIDs []string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	byTask := r.db.assignments[taskID]
	if byTask == nil {
		byTask = make(map[string]models.Assignment)
		r.db.assignments[taskID] = byTask
	}

	now := time.Now()
	for _, schoolID := range schoolIDs {
		if _, ok := byTask[schoolID]; !ok {
			byTask[schoolID] = models.Assignment{TaskID: taskID, SchoolID: schoolID, CreatedAt: now}
		}
	}
	return nil
}

func (r *assignmentRepository) SchoolIDsByTask(ctx context.Context, taskID string) ([]string, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var ids []string
	for schoolID := range r.db.assignments[taskID] {
		ids = append(ids, schoolID)
	}
	return ids, nil
}

func (r *assignmentRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var assignments []models.Assignment
	for _, taskID := range taskIDs {
		for _, a := range r.db.assignments[taskID] {
			assignments = append(assignments, a)
		}
	}
	return assignments, nil
}
