package models

import "time"

// Data Transfer Objects

type CreateSchoolRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

type CreatePeriodRequest struct {
	Name      string    `json:"name" validate:"required,min=2,max=255"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
}

type UpdatePeriodRequest struct {
	Name      *string    `json:"name,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
}

type CreateTaskRequest struct {
	Kind          string    `json:"kind" validate:"required,oneof=file data"`
	Title         string    `json:"title" validate:"required,min=3,max=255"`
	Content       string    `json:"content"`
	Deadline      time.Time `json:"deadline" validate:"required"`
	PeriodID      string    `json:"period_id" validate:"required,uuid"`
	AttachmentURL string    `json:"attachment_url,omitempty"`

	// TargetSchoolIDs, when non-empty, pins the audience to exactly these
	// schools. When empty the audience is every known school.
	TargetSchoolIDs []string `json:"target_school_ids,omitempty"`

	// Data kind only.
	Columns      []Column `json:"columns_schema,omitempty"`
	TemplateRows []Row    `json:"template_rows,omitempty"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title,omitempty"`
	Content       *string    `json:"content,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	PeriodID      *string    `json:"period_id,omitempty"`
	IsLocked      *bool      `json:"is_locked,omitempty"`
	AttachmentURL *string    `json:"attachment_url,omitempty"`
	Columns       []Column   `json:"columns_schema,omitempty"`
	TemplateRows  []Row      `json:"template_rows,omitempty"`
}

type SubmitFileRequest struct {
	FileURL string `json:"file_url" validate:"required,url"`
}

type SubmitDataRequest struct {
	Rows []Row `json:"rows" validate:"required"`
}

// SubmittedSchool is one audience member that has responded to a task.
type SubmittedSchool struct {
	SchoolID    string    `json:"school_id"`
	Name        string    `json:"name"`
	SubmittedAt time.Time `json:"submitted_at"`
	FileURL     string    `json:"file_url,omitempty"`
}

// PendingSchool is one audience member that has not responded yet.
type PendingSchool struct {
	SchoolID string `json:"school_id"`
	Name     string `json:"name"`
}

// TaskStatus partitions a task's audience into submitted and not-submitted.
// The two lists are disjoint and together cover the audience exactly.
type TaskStatus struct {
	Task         Task              `json:"task"`
	Submitted    []SubmittedSchool `json:"submitted"`
	NotSubmitted []PendingSchool   `json:"not_submitted"`
}

// SchoolCompliance carries the per-school counters reported by the
// compliance summary.
type SchoolCompliance struct {
	SchoolID      string `json:"school_id"`
	Name          string `json:"name"`
	AssignedCount int    `json:"assigned_count"`
	OnTimeCount   int    `json:"ontime_count"`
	LateCount     int    `json:"late_count"`
	MissingCount  int    `json:"missing_count"`
}

// ComplianceSummary buckets every school that had at least one in-window
// obligation by its best classification. Each bucket is sorted by school
// name ascending.
type ComplianceSummary struct {
	OnTime  []SchoolCompliance `json:"ontime"`
	Late    []SchoolCompliance `json:"late"`
	Missing []SchoolCompliance `json:"missing"`
}

type DashboardStats struct {
	OverdueFileTasks   int    `json:"overdue_file_tasks"`
	OverdueDataReports int    `json:"overdue_data_reports"`
	TotalSchools       int    `json:"total_schools"`
	ActivePeriodName   string `json:"active_period_name"`
}

type TasksResponse struct {
	Tasks []TaskWithFlags `json:"tasks"`
	Total int             `json:"total"`
}

type ResetRequest struct {
	Password string `json:"password" validate:"required"`
}
