package inmem

import (
	"context"
	"sort"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type periodRepository struct {
	db *DB
}

func NewPeriodRepository(db *DB) repository.PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) Create(ctx context.Context, period *models.Period) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.periods[period.ID] = *period
	return nil
}

func (r *periodRepository) GetByID(ctx context.Context, id string) (*models.Period, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if period, ok := r.db.periods[id]; ok {
		return &period, nil
	}
	return nil, nil
}

func (r *periodRepository) GetAll(ctx context.Context) ([]models.Period, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	periods := make([]models.Period, 0, len(r.db.periods))
	for _, period := range r.db.periods {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].StartDate.After(periods[j].StartDate) })
	return periods, nil
}

func (r *periodRepository) GetActive(ctx context.Context) (*models.Period, error) {
	periods, _ := r.GetAll(ctx)
	for _, period := range periods {
		if period.IsActive {
			p := period
			return &p, nil
		}
	}
	return nil, nil
}

func (r *periodRepository) Update(ctx context.Context, period *models.Period) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.periods[period.ID]; !ok {
		return nil
	}
	r.db.periods[period.ID] = *period
	return nil
}

func (r *periodRepository) SetActive(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for pid, period := range r.db.periods {
		period.IsActive = pid == id
		r.db.periods[pid] = period
	}
	return nil
}

func (r *periodRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.periods, id)

	// Cascade: tasks of the period and every row keyed by those tasks.
	for taskID, task := range r.db.tasks {
		if task.PeriodID != id {
			continue
		}
		delete(r.db.tasks, taskID)
		delete(r.db.assignments, taskID)
		delete(r.db.submissions, taskID)
		delete(r.db.reminders, taskID)
	}
	return nil
}

func (r *periodRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.periods[id]
	return ok, nil
}
