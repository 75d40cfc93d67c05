package models

import (
	"time"
)

// Assignment scopes a task to an explicit audience. When any rows exist for
// a task they define the audience exactly; when none exist the audience
// defaults to every known school. Assignments are immutable after creation.
type Assignment struct {
	TaskID    string    `json:"task_id" db:"task_id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReminderFlag marks a school as not-yet-submitted as of the last reminder
// sweep. Flags are created idempotently and grant no permission.
type ReminderFlag struct {
	TaskID    string    `json:"task_id" db:"task_id"`
	SchoolID  string    `json:"school_id" db:"school_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
