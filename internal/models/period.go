package models

import (
	"time"
)

// Period is a named reporting span ("school year") that tasks belong to.
type Period struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	FolderID  string    `json:"folder_id,omitempty" db:"folder_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
