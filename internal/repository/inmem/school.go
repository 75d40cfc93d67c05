package inmem

import (
	"context"
	"sort"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) repository.SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.schools[school.ID] = *school
	return nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id string) (*models.School, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if school, ok := r.db.schools[id]; ok {
		return &school, nil
	}
	return nil, nil
}

func (r *schoolRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.School, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, school := range r.db.schools {
		if school.APIKey == apiKey {
			s := school
			return &s, nil
		}
	}
	return nil, nil
}

func (r *schoolRepository) GetByName(ctx context.Context, name string) (*models.School, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, school := range r.db.schools {
		if school.Name == name {
			s := school
			return &s, nil
		}
	}
	return nil, nil
}

func (r *schoolRepository) GetAll(ctx context.Context) ([]models.School, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	schools := make([]models.School, 0, len(r.db.schools))
	for _, school := range r.db.schools {
		schools = append(schools, school)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].Name < schools[j].Name })
	return schools, nil
}

func (r *schoolRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	delete(r.db.schools, id)

	// Cascade: every row keyed by this school goes with it.
	for taskID := range r.db.submissions {
		delete(r.db.submissions[taskID], id)
	}
	for taskID := range r.db.assignments {
		delete(r.db.assignments[taskID], id)
	}
	for taskID := range r.db.reminders {
		delete(r.db.reminders[taskID], id)
	}
	return nil
}

func (r *schoolRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	_, ok := r.db.schools[id]
	return ok, nil
}

func (r *schoolRepository) Count(ctx context.Context) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return len(r.db.schools), nil
}
