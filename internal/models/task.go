package models

import (
	"time"
)

type TaskKind string

const (
	TaskKindFile TaskKind = "file"
	TaskKindData TaskKind = "data"
)

func (k TaskKind) String() string {
	return string(k)
}

func IsValidTaskKind(kind string) bool {
	switch kind {
	case "file", "data":
		return true
	default:
		return false
	}
}

// Column describes one column of a data-kind task's entry grid.
type Column struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	DType    string   `json:"dtype"`
	Required bool     `json:"required"`
	Enum     []string `json:"enum,omitempty"`
}

// Row is one row of entered data, keyed by column name.
type Row map[string]interface{}

// Task is a recurring obligation issued to schools: either a file upload
// (kind "file") or a structured data entry (kind "data"). Data-kind tasks
// carry an ordered column schema and optional seed rows.
type Task struct {
	ID               string    `json:"id" db:"id"`
	Kind             TaskKind  `json:"kind" db:"kind"`
	Title            string    `json:"title" db:"title"`
	Content          string    `json:"content,omitempty" db:"content"`
	Deadline         time.Time `json:"deadline" db:"deadline"`
	PeriodID         string    `json:"period_id" db:"period_id"`
	IsLocked         bool      `json:"is_locked" db:"is_locked"`
	NotificationSent bool      `json:"is_notification_sent" db:"notification_sent"`
	AttachmentURL    string    `json:"attachment_url,omitempty" db:"attachment_url"`
	Columns          []Column  `json:"columns_schema,omitempty" db:"columns_schema"`
	TemplateRows     []Row     `json:"template_rows,omitempty" db:"template_rows"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// TaskWithFlags decorates a task with per-school flags for client listings.
type TaskWithFlags struct {
	Task
	IsSubmitted bool `json:"is_submitted"`
	IsReminded  bool `json:"is_reminded"`
}
