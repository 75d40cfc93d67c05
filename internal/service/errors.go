package service

import "errors"

var (
	ErrSchoolNotFound     = errors.New("school not found")
	ErrPeriodNotFound     = errors.New("period not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrTaskLocked rejects a submission against a locked task. The check
	// lives in the submission service so no caller can route around it.
	ErrTaskLocked = errors.New("task is locked")

	ErrSchoolNameTaken = errors.New("school name already exists")
	ErrPeriodNameTaken = errors.New("period name already exists")
	ErrInvalidTaskKind = errors.New("invalid task kind")
	ErrInvalidDeadline = errors.New("deadline is required")
	ErrInvalidWindow   = errors.New("window end precedes start")

	ErrWrongPassword = errors.New("wrong reset password")
	ErrUnauthorized  = errors.New("unauthorized")
)
