package models

import (
	"time"
)

// Submission is the single current response of a school to a task.
// There is at most one row per (task, school); a resubmission overwrites
// the payload and the timestamp.
//
// For data-kind tasks a placeholder row (SubmittedAt == nil) is created for
// every audience member when the task is created; only schools holding a
// placeholder may submit data.
type Submission struct {
	ID           string     `json:"id" db:"id"`
	TaskID       string     `json:"task_id" db:"task_id"`
	SchoolID     string     `json:"school_id" db:"school_id"`
	FileURL      string     `json:"file_url,omitempty" db:"file_url"`
	Rows         []Row      `json:"rows,omitempty" db:"rows"`
	SubmittedAt  *time.Time `json:"submitted_at" db:"submitted_at"`
	LastEditedBy string     `json:"last_edited_by,omitempty" db:"last_edited_by"`
	LastEditedAt *time.Time `json:"last_edited_at,omitempty" db:"last_edited_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Submitted reports whether the row is a real submission rather than a
// pre-created placeholder.
func (s *Submission) Submitted() bool {
	return s != nil && s.SubmittedAt != nil
}
