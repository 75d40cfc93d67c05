package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type TaskService interface {
	CreateTask(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	// GetAllTasks lists tasks, optionally filtered by period and kind.
	// When currentSchoolID is set, tasks with an explicit audience that
	// excludes the school are dropped, and each remaining task is decorated
	// with the school's submitted/reminded flags.
	GetAllTasks(ctx context.Context, periodID, kind, currentSchoolID string) ([]models.TaskWithFlags, error)
	UpdateTask(ctx context.Context, id string, req *models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ResolveAudience(ctx context.Context, task *models.Task) ([]models.School, error)

	// Sweep API: overdue tasks whose notification flag is still unset, and
	// the one-shot write that sets it after a delivery attempt succeeds.
	ListOverdueUnnotified(ctx context.Context) ([]models.Task, error)
	MarkNotified(ctx context.Context, id string) error
}

type taskService struct {
	taskRepo       repository.TaskRepository
	periodRepo     repository.PeriodRepository
	schoolRepo     repository.SchoolRepository
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	reminderRepo   repository.ReminderRepository
	logger         zerolog.Logger
}

func NewTaskService(
	taskRepo repository.TaskRepository,
	periodRepo repository.PeriodRepository,
	schoolRepo repository.SchoolRepository,
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	reminderRepo repository.ReminderRepository,
	logger zerolog.Logger,
) TaskService {
	return &taskService{
		taskRepo:       taskRepo,
		periodRepo:     periodRepo,
		schoolRepo:     schoolRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		reminderRepo:   reminderRepo,
		logger:         logger,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	if !models.IsValidTaskKind(req.Kind) {
		return nil, ErrInvalidTaskKind
	}
	if req.Deadline.IsZero() {
		return nil, ErrInvalidDeadline
	}

	periodExists, err := s.periodRepo.Exists(ctx, req.PeriodID)
	if err != nil {
		return nil, fmt.Errorf("failed to check period existence: %w", err)
	}
	if !periodExists {
		return nil, ErrPeriodNotFound
	}

	now := time.Now()
	task := &models.Task{
		ID:            uuid.New().String(),
		Kind:          models.TaskKind(req.Kind),
		Title:         req.Title,
		Content:       req.Content,
		Deadline:      req.Deadline,
		PeriodID:      req.PeriodID,
		AttachmentURL: req.AttachmentURL,
		Columns:       req.Columns,
		TemplateRows:  req.TemplateRows,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(req.TargetSchoolIDs) > 0 {
		if err := s.assignmentRepo.CreateBatch(ctx, task.ID, req.TargetSchoolIDs); err != nil {
			return nil, fmt.Errorf("failed to persist audience: %w", err)
		}
	}

	// Data-kind tasks freeze their audience at creation time by
	// materializing one placeholder per resolved audience member.
	if task.Kind == models.TaskKindData {
		audience := req.TargetSchoolIDs
		if len(audience) == 0 {
			schools, err := s.schoolRepo.GetAll(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list schools: %w", err)
			}
			for _, school := range schools {
				audience = append(audience, school.ID)
			}
		}

		if err := s.submissionRepo.CreatePlaceholders(ctx, task.ID, audience, req.TemplateRows); err != nil {
			return nil, fmt.Errorf("failed to materialize placeholders: %w", err)
		}
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("kind", task.Kind.String()).
		Str("title", task.Title).
		Int("targets", len(req.TargetSchoolIDs)).
		Msg("Task created")

	return task, nil
}

func (s *taskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	return task, nil
}

func (s *taskService) GetAllTasks(ctx context.Context, periodID, kind, currentSchoolID string) ([]models.TaskWithFlags, error) {
	tasks, err := s.taskRepo.GetAll(ctx, periodID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var submitted, reminded map[string]bool
	if currentSchoolID != "" {
		submitted, err = s.submissionRepo.SubmittedTaskIDs(ctx, currentSchoolID)
		if err != nil {
			return nil, fmt.Errorf("failed to list submitted tasks: %w", err)
		}
		reminded, err = s.reminderRepo.TaskIDsForSchool(ctx, currentSchoolID)
		if err != nil {
			return nil, fmt.Errorf("failed to list reminder flags: %w", err)
		}
	}

	result := make([]models.TaskWithFlags, 0, len(tasks))
	for _, task := range tasks {
		if currentSchoolID != "" {
			inAudience, err := s.schoolInAudience(ctx, &task, currentSchoolID)
			if err != nil {
				return nil, err
			}
			if !inAudience {
				continue
			}
		}

		result = append(result, models.TaskWithFlags{
			Task:        task,
			IsSubmitted: submitted[task.ID],
			IsReminded:  reminded[task.ID],
		})
	}

	return result, nil
}

func (s *taskService) schoolInAudience(ctx context.Context, task *models.Task, schoolID string) (bool, error) {
	if task.Kind == models.TaskKindData {
		sub, err := s.submissionRepo.Get(ctx, task.ID, schoolID)
		if err != nil {
			return false, fmt.Errorf("failed to check placeholder: %w", err)
		}
		return sub != nil, nil
	}

	assigned, err := s.assignmentRepo.SchoolIDsByTask(ctx, task.ID)
	if err != nil {
		return false, fmt.Errorf("failed to list assignments: %w", err)
	}
	if len(assigned) == 0 {
		return true, nil
	}
	for _, id := range assigned {
		if id == schoolID {
			return true, nil
		}
	}
	return false, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Content != nil {
		task.Content = *req.Content
	}
	if req.Deadline != nil {
		if req.Deadline.IsZero() {
			return nil, ErrInvalidDeadline
		}
		task.Deadline = *req.Deadline
	}
	if req.PeriodID != nil {
		exists, err := s.periodRepo.Exists(ctx, *req.PeriodID)
		if err != nil {
			return nil, fmt.Errorf("failed to check period existence: %w", err)
		}
		if !exists {
			return nil, ErrPeriodNotFound
		}
		task.PeriodID = *req.PeriodID
	}
	if req.IsLocked != nil {
		task.IsLocked = *req.IsLocked
	}
	if req.AttachmentURL != nil {
		task.AttachmentURL = *req.AttachmentURL
	}
	if req.Columns != nil {
		task.Columns = req.Columns
	}
	if req.TemplateRows != nil {
		task.TemplateRows = req.TemplateRows
	}
	task.UpdatedAt = time.Now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	exists, err := s.taskRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}

	// Assignments, submissions and reminder flags cascade with the task.
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Info().Str("task_id", id).Msg("Task deleted")
	return nil
}

func (s *taskService) ResolveAudience(ctx context.Context, task *models.Task) ([]models.School, error) {
	return resolveAudience(ctx, task, s.schoolRepo, s.assignmentRepo, s.submissionRepo)
}

func (s *taskService) ListOverdueUnnotified(ctx context.Context) ([]models.Task, error) {
	return s.taskRepo.ListOverdueUnnotified(ctx, time.Now())
}

func (s *taskService) MarkNotified(ctx context.Context, id string) error {
	exists, err := s.taskRepo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %w", err)
	}
	if !exists {
		return ErrTaskNotFound
	}

	return s.taskRepo.MarkNotificationSent(ctx, id)
}
