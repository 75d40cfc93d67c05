package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type taskRepository struct {
	db *DB
}

func NewTaskRepository(db *DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.tasks[task.ID] = *task
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if task, ok := r.db.tasks[id]; ok {
		return &task, nil
	}
	return nil, nil
}

func (r *taskRepository) GetAll(ctx context.Context, periodID, kind string) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var tasks []models.Task
	for _, task := range r.db.tasks {
		if periodID != "" && task.PeriodID != periodID {
			continue
		}
		if kind != "" && task.Kind.String() != kind {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Deadline.After(tasks[j].Deadline) })
	return tasks, nil
}

func (r *taskRepository) ListByDeadlineWindow(ctx context.Context, start, end time.Time, periodID string, kinds []models.TaskKind) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	wanted := make(map[models.TaskKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	var tasks []models.Task
	for _, task := range r.db.tasks {
		if !wanted[task.Kind] {
			continue
		}
		if task.Deadline.Before(start) || task.Deadline.After(end) {
			continue
		}
		if periodID != "" && task.PeriodID != periodID {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Deadline.Before(tasks[j].Deadline) })
	return tasks, nil
}

func (r *taskRepository) ListOverdueUnnotified(ctx context.Context, now time.Time) ([]models.Task, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var tasks []models.Task
	for _, task := range r.db.tasks {
		if task.Deadline.Before(now) && !task.NotificationSent {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Deadline.Before(tasks[j].Deadline) })
	return tasks, nil
}

func (r *taskRepository) MarkNotificationSent(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if task, ok := r.db.tasks[id]; ok {
		task.NotificationSent = true
		task.UpdatedAt = time.Now()
		r.db.tasks[id] = task
	}
	return nil
}

func (r *taskRepository) CountOverdueUnlocked(ctx context.Context, now time.Time, kind models.TaskKind) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	count := 0
	for _, task := range r.db.tasks {
		if task.Kind == kind && task.Deadline.Before(now) && !task.IsLocked {
			count++
		}
	}
	return count, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.tasks[task.ID]; !ok {
		return nil
	}
	r.db.tasks[task.ID] = *task
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.tasks, id)
	delete(r.db.assignments, id)
	delete(r.db.submissions, id)
	delete(r.db.reminders, id)
	return nil
}

func (r *taskRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.tasks[id]
	return ok, nil
}
