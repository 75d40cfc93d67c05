package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoangThiencm/autoreport/internal/models"
	"github.com/HoangThiencm/autoreport/internal/repository"
)

type SummaryKind string

const (
	SummaryKindFile SummaryKind = "file"
	SummaryKindData SummaryKind = "data"
	SummaryKindBoth SummaryKind = "both"
)

func ParseSummaryKind(kind string) (SummaryKind, error) {
	switch kind {
	case "file":
		return SummaryKindFile, nil
	case "data":
		return SummaryKindData, nil
	case "both", "":
		return SummaryKindBoth, nil
	default:
		return "", ErrInvalidTaskKind
	}
}

// Classification scores, ordered so that a school's best outcome wins when
// the file and data sides are merged.
const (
	scoreNotAssigned = -1
	scoreMissing     = 0
	scoreLate        = 1
	scoreOnTime      = 2
)

type ComplianceService interface {
	// Summary classifies every school with at least one obligation whose
	// deadline falls inside [start, end] as on-time, late or missing.
	// Schools with no in-window obligation of the requested kind(s) are
	// excluded from all three buckets.
	Summary(ctx context.Context, start, end time.Time, periodID string, kind SummaryKind) (*models.ComplianceSummary, error)
}

type complianceService struct {
	taskRepo       repository.TaskRepository
	schoolRepo     repository.SchoolRepository
	assignmentRepo repository.AssignmentRepository
	submissionRepo repository.SubmissionRepository
	location       *time.Location
	logger         zerolog.Logger
}

func NewComplianceService(
	taskRepo repository.TaskRepository,
	schoolRepo repository.SchoolRepository,
	assignmentRepo repository.AssignmentRepository,
	submissionRepo repository.SubmissionRepository,
	location *time.Location,
	logger zerolog.Logger,
) ComplianceService {
	if location == nil {
		location = time.UTC
	}
	return &complianceService{
		taskRepo:       taskRepo,
		schoolRepo:     schoolRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		location:       location,
		logger:         logger,
	}
}

// counters accumulates one school's per-kind obligation outcomes.
type counters struct {
	assigned int
	ontime   int
	late     int
	missing  int
}

// score collapses a counter set into a single classification: any missing
// obligation dominates, then any late one, then on-time.
func (c *counters) score() int {
	switch {
	case c == nil || c.assigned == 0:
		return scoreNotAssigned
	case c.missing > 0:
		return scoreMissing
	case c.late > 0:
		return scoreLate
	case c.ontime > 0:
		return scoreOnTime
	default:
		return scoreMissing
	}
}

func (s *complianceService) Summary(ctx context.Context, start, end time.Time, periodID string, kind SummaryKind) (*models.ComplianceSummary, error) {
	if end.Before(start) {
		return nil, ErrInvalidWindow
	}

	// Every instant is compared in one reference zone.
	start = s.normalize(start)
	end = s.normalize(end)

	var kinds []models.TaskKind
	switch kind {
	case SummaryKindFile:
		kinds = []models.TaskKind{models.TaskKindFile}
	case SummaryKindData:
		kinds = []models.TaskKind{models.TaskKindData}
	default:
		kinds = []models.TaskKind{models.TaskKindFile, models.TaskKindData}
	}

	tasks, err := s.taskRepo.ListByDeadlineWindow(ctx, start, end, periodID, kinds)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}

	schools, err := s.schoolRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}

	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	assignments, err := s.assignmentRepo.ListByTaskIDs(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	assignedByTask := make(map[string][]string)
	for _, a := range assignments {
		assignedByTask[a.TaskID] = append(assignedByTask[a.TaskID], a.SchoolID)
	}

	subs, err := s.submissionRepo.ListByTaskIDs(ctx, taskIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	subByTask := make(map[string]map[string]models.Submission)
	for _, sub := range subs {
		bySchool := subByTask[sub.TaskID]
		if bySchool == nil {
			bySchool = make(map[string]models.Submission)
			subByTask[sub.TaskID] = bySchool
		}
		bySchool[sub.SchoolID] = sub
	}

	fileCounters := make(map[string]*counters)
	dataCounters := make(map[string]*counters)

	for _, task := range tasks {
		byKind := fileCounters
		if task.Kind == models.TaskKindData {
			byKind = dataCounters
		}

		audience := s.taskAudience(&task, assignedByTask, subByTask[task.ID], schools)
		deadline := s.normalize(task.Deadline)

		for _, schoolID := range audience {
			c := byKind[schoolID]
			if c == nil {
				c = &counters{}
				byKind[schoolID] = c
			}
			c.assigned++

			sub, ok := subByTask[task.ID][schoolID]
			switch {
			case !ok || sub.SubmittedAt == nil:
				c.missing++
			case s.normalize(*sub.SubmittedAt).After(deadline):
				c.late++
			default:
				// Equality at the deadline counts as on-time.
				c.ontime++
			}
		}
	}

	return s.bucketize(schools, kind, fileCounters, dataCounters), nil
}

// taskAudience lists the school ids a task's obligations count against.
// File kind: explicit assignments, else every known school. Data kind:
// exactly the placeholder holders.
func (s *complianceService) taskAudience(
	task *models.Task,
	assignedByTask map[string][]string,
	subsBySchool map[string]models.Submission,
	schools []models.School,
) []string {
	if task.Kind == models.TaskKindData {
		ids := make([]string, 0, len(subsBySchool))
		for schoolID := range subsBySchool {
			ids = append(ids, schoolID)
		}
		return ids
	}

	if assigned := assignedByTask[task.ID]; len(assigned) > 0 {
		return assigned
	}

	ids := make([]string, 0, len(schools))
	for _, school := range schools {
		ids = append(ids, school.ID)
	}
	return ids
}

func (s *complianceService) bucketize(
	schools []models.School,
	kind SummaryKind,
	fileCounters, dataCounters map[string]*counters,
) *models.ComplianceSummary {
	summary := &models.ComplianceSummary{
		OnTime:  []models.SchoolCompliance{},
		Late:    []models.SchoolCompliance{},
		Missing: []models.SchoolCompliance{},
	}

	for _, school := range schools {
		fc := fileCounters[school.ID]
		dc := dataCounters[school.ID]

		var finalScore int
		total := counters{}

		switch kind {
		case SummaryKindFile:
			finalScore = fc.score()
			total.add(fc)
		case SummaryKindData:
			finalScore = dc.score()
			total.add(dc)
		default:
			// Both: the better side wins, the counters always sum.
			finalScore = fc.score()
			if ds := dc.score(); ds > finalScore {
				finalScore = ds
			}
			total.add(fc)
			total.add(dc)
		}

		// No in-window obligation of the requested kind(s): not reported.
		if total.assigned == 0 {
			continue
		}

		entry := models.SchoolCompliance{
			SchoolID:      school.ID,
			Name:          school.Name,
			AssignedCount: total.assigned,
			OnTimeCount:   total.ontime,
			LateCount:     total.late,
			MissingCount:  total.missing,
		}

		switch finalScore {
		case scoreOnTime:
			summary.OnTime = append(summary.OnTime, entry)
		case scoreLate:
			summary.Late = append(summary.Late, entry)
		default:
			summary.Missing = append(summary.Missing, entry)
		}
	}

	byName := func(entries []models.SchoolCompliance) func(i, j int) bool {
		return func(i, j int) bool { return entries[i].Name < entries[j].Name }
	}
	sort.Slice(summary.OnTime, byName(summary.OnTime))
	sort.Slice(summary.Late, byName(summary.Late))
	sort.Slice(summary.Missing, byName(summary.Missing))

	return summary
}

func (c *counters) add(other *counters) {
	if other == nil {
		return
	}
	c.assigned += other.assigned
	c.ontime += other.ontime
	c.late += other.late
	c.missing += other.missing
}

func (s *complianceService) normalize(t time.Time) time.Time {
	return t.In(s.location)
}
