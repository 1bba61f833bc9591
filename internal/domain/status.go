package domain

import (
	"errors"
	"time"
)

// UserTaskStatus-specific validation errors
var (
	// ErrStatusUserIDEmpty is returned when a status record's user ID is empty.
	ErrStatusUserIDEmpty = errors.New("status user ID cannot be empty")

	// ErrStatusTaskIDEmpty is returned when a status record's task ID is empty.
	ErrStatusTaskIDEmpty = errors.New("status task ID cannot be empty")

	// ErrStatusOriginalIDEmpty is returned when a status record's original task ID is empty.
	ErrStatusOriginalIDEmpty = errors.New("status original task ID cannot be empty")

	// ErrStatusDateZero is returned when a status record's date is the zero time.
	ErrStatusDateZero = errors.New("status date cannot be zero")
)

// CivilDate truncates an instant to its civil date: midnight UTC of the
// same calendar day. All status records are keyed by civil dates so that
// (user, task, date) identity is stable across time zones.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UserTaskStatus is one user's completion record for one task instance
// on one date. The composite identity is (UserID, TaskID, Date).
type UserTaskStatus struct {
	UserID         string
	TaskID         string
	Date           time.Time // civil date, midnight UTC
	OriginalTaskID string
	TeamID         string // empty for personal tasks
	IsDone         bool
	CompletedAt    *time.Time
}

// NewUserTaskStatus creates a not-yet-done status record for the given
// user, task instance, and civil date. OriginalTaskID is set explicitly
// by the caller so lineage survives any number of generations.
func NewUserTaskStatus(
	userID, taskID, originalTaskID, teamID string,
	date time.Time,
) (*UserTaskStatus, error) {
	status := &UserTaskStatus{
		UserID:         userID,
		TaskID:         taskID,
		Date:           CivilDate(date),
		OriginalTaskID: originalTaskID,
		TeamID:         teamID,
		IsDone:         false,
		CompletedAt:    nil,
	}

	if err := status.Validate(); err != nil {
		return nil, err
	}

	return status, nil
}

// Validate checks if the UserTaskStatus has valid data.
func (s *UserTaskStatus) Validate() error {
	if s.UserID == "" {
		return ErrStatusUserIDEmpty
	}

	if s.TaskID == "" {
		return ErrStatusTaskIDEmpty
	}

	if s.OriginalTaskID == "" {
		return ErrStatusOriginalIDEmpty
	}

	if s.Date.IsZero() {
		return ErrStatusDateZero
	}

	return nil
}

// MarkDone flips the record to done and pins the completion timestamp.
func (s *UserTaskStatus) MarkDone(now time.Time) {
	s.IsDone = true
	completed := now
	s.CompletedAt = &completed
}

// MarkUndone flips the record back to not done and clears the
// completion timestamp, preserving the CompletedAt invariant.
func (s *UserTaskStatus) MarkUndone() {
	s.IsDone = false
	s.CompletedAt = nil
}
