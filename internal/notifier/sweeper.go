package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/service"
	"github.com/HoangThiencm/autoreport/internal/service/integration"
)

// Sweeper periodically finds tasks whose deadline has passed without the
// overdue notification going out, mails a per-task report of the schools
// that never submitted, and marks the task notified. The flag is set only
// after delivery succeeds, so a failed send is retried on the next tick.
type Sweeper interface {
	Start(ctx context.Context) error
	Stop() error
	SweepOnce(ctx context.Context) (int, error)
}

type sweeper struct {
	taskService   service.TaskService
	statusService service.StatusService
	notifier      integration.Notifier
	events        integration.EventPublisher
	adminEmail    string
	interval      time.Duration
	logger        zerolog.Logger

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewSweeper(
	taskService service.TaskService,
	statusService service.StatusService,
	notifier integration.Notifier,
	events integration.EventPublisher,
	adminEmail string,
	interval time.Duration,
	logger zerolog.Logger,
) Sweeper {
	return &sweeper{
		taskService:   taskService,
		statusService: statusService,
		notifier:      notifier,
		events:        events,
		adminEmail:    adminEmail,
		interval:      interval,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

func (s *sweeper) Start(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting deadline sweeper...")

	s.wg.Add(1)
	go s.run(ctx)

	return nil
}

func (s *sweeper) Stop() error {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
	s.logger.Info().Msg("Deadline sweeper stopped")
	return nil
}

func (s *sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Deadline sweep failed")
			}
		}
	}
}

// SweepOnce processes every overdue unnotified task and returns how many
// notifications went out.
func (s *sweeper) SweepOnce(ctx context.Context) (int, error) {
	tasks, err := s.taskService.ListOverdueUnnotified(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue tasks: %w", err)
	}

	sent := 0
	for _, task := range tasks {
		if err := s.notifyTask(ctx, &task); err != nil {
			s.logger.Error().Err(err).
				Str("task_id", task.ID).
				Str("title", task.Title).
				Msg("Failed to send overdue notification")
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *sweeper) notifyTask(ctx context.Context, task *models.Task) error {
	status, err := s.statusService.TaskStatus(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("failed to resolve task status: %w", err)
	}

	subject := fmt.Sprintf("Deadline passed: %s", task.Title)
	body := buildOverdueBody(task, status.NotSubmitted)

	if err := s.notifier.Send(ctx, s.adminEmail, subject, body); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	if err := s.taskService.MarkNotified(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to mark task notified: %w", err)
	}

	if s.events != nil {
		missing := make([]string, 0, len(status.NotSubmitted))
		for _, school := range status.NotSubmitted {
			missing = append(missing, school.SchoolID)
		}
		event := &models.TaskOverdueEvent{
			TaskID:       task.ID,
			Title:        task.Title,
			Kind:         string(task.Kind),
			Deadline:     task.Deadline.Unix(),
			NotSubmitted: missing,
		}
		if err := s.events.PublishTaskOverdue(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("task_id", task.ID).Msg("Failed to publish overdue event")
		}
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("title", task.Title).
		Int("missing", len(status.NotSubmitted)).
		Msg("Overdue notification sent")

	return nil
}

func buildOverdueBody(task *models.Task, pending []models.PendingSchool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h3>%s</h3>", task.Title)
	fmt.Fprintf(&b, "<p>The deadline %s has passed.</p>", task.Deadline.Format(time.RFC1123))

	if len(pending) == 0 {
		b.WriteString("<p>Every school has submitted.</p>")
		return b.String()
	}

	fmt.Fprintf(&b, "<p>%d school(s) have not submitted:</p><ul>", len(pending))
	for _, school := range pending {
		fmt.Fprintf(&b, "<li>%s</li>", school.Name)
	}
	b.WriteString("</ul>")

	return b.String()
}
