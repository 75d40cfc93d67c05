package models

type SubmissionReceivedEvent struct {
	TaskID      string `json:"task_id"`
	SchoolID    string `json:"school_id"`
	Kind        string `json:"kind"`
	SubmittedAt int64  `json:"submitted_at"`
}

type TaskOverdueEvent struct {
	TaskID       string   `json:"task_id"`
	Title        string   `json:"title"`
	Kind         string   `json:"kind"`
	Deadline     int64    `json:"deadline"`
	NotSubmitted []string `json:"not_submitted_school_ids"`
}
