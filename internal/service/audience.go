package service

import (
	"context"
	"fmt"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

// resolveAudience computes the set of schools expected to respond to a task.
//
// File kind: explicit assignment rows when any exist, otherwise every school
// currently registered, evaluated fresh on each call. A school created after
// the task still joins an unassigned task's audience.
//
// Data kind: exactly the schools holding a pre-created placeholder row. The
// audience was materialized when the task was created, so there is no live
// "everyone" fallback.
func resolveAudience(
	ctx context.Context,
	task *models.Task,
	schoolRepo repository.SchoolRepository,
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
) ([]models.School, error) {
	if task.Kind == models.TaskKindData {
		subs, err := submissionRepo.ListByTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list placeholders: %w", err)
		}

		schools := make([]models.School, 0, len(subs))
		for _, sub := range subs {
			school, err := schoolRepo.GetByID(ctx, sub.SchoolID)
			if err != nil {
				return nil, fmt.Errorf("failed to get school: %w", err)
			}
			if school != nil {
				schools = append(schools, *school)
			}
		}
		return schools, nil
	}

	assigned, err := assignmentRepo.SchoolIDsByTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if len(assigned) == 0 {
		return schoolRepo.GetAll(ctx)
	}

	schools := make([]models.School, 0, len(assigned))
	for _, id := range assigned {
		school, err := schoolRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get school: %w", err)
		}
		if school != nil {
			schools = append(schools, *school)
		}
	}
	return schools, nil
}
