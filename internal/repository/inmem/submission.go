package inmem

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type submissionRepository struct {
	db *DB
}

func NewSubmissionRepository(db *DB) repository.SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Save(ctx context.Context, sub *models.Submission) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	byTask := r.db.submissions[sub.TaskID]
	if byTask == nil {
		byTask = make(map[string]models.Submission)
		r.db.submissions[sub.TaskID] = byTask
	}

	if existing, ok := byTask[sub.SchoolID]; ok {
		// Upsert keeps the original row identity.
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	}
	byTask[sub.SchoolID] = *sub
	return nil
}

func (r *submissionRepository) Get(ctx context.Context, taskID, schoolID string) (*models.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if sub, ok := r.db.submissions[taskID][schoolID]; ok {
		return &sub, nil
	}
	return nil, nil
}

func (r *submissionRepository) ListByTask(ctx context.Context, taskID string) ([]models.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var subs []models.Submission
	for _, sub := range r.db.submissions[taskID] {
		subs = append(subs, sub)
	}
	return subs, nil
}

func (r *submissionRepository) ListByTaskIDs(ctx context.Context, taskIDs []string) ([]models.Submission, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var subs []models.Submission
	for _, taskID := range taskIDs {
		for _, sub := range r.db.submissions[taskID] {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

func (r *submissionRepository) SubmittedTaskIDs(ctx context.Context, schoolID string) (map[string]bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ids := make(map[string]bool)
	for taskID, byTask := range r.db.submissions {
		if sub, ok := byTask[schoolID]; ok && sub.SubmittedAt != nil {
			ids[taskID] = true
		}
	}
	return ids, nil
}

func (r *submissionRepository) CreatePlaceholders(ctx context.Context, taskID string, schoolIDs []string, seed []models.Row) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	byTask := r.db.submissions[taskID]
	if byTask == nil {
		byTask = make(map[string]models.Submission)
		r.db.submissions[taskID] = byTask
	}

	now := time.Now()
	for _, schoolID := range schoolIDs {
		if _, ok := byTask[schoolID]; ok {
			continue
		}
		byTask[schoolID] = models.Submission{
			ID:        uuid.New().String(),
			TaskID:    taskID,
			SchoolID:  schoolID,
			Rows:      seed,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return nil
}
