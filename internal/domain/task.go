package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskOriginalIDEmpty is returned when a task's original ID is empty.
	ErrTaskOriginalIDEmpty = errors.New("task original ID cannot be empty")

	// ErrTaskNameEmpty is returned when a task's name is empty.
	ErrTaskNameEmpty = errors.New("task name cannot be empty")

	// ErrTaskCycleInvalid is returned when a task carries an unrecognized cycle value.
	ErrTaskCycleInvalid = errors.New("task cycle must be daily, weekly, or unset")
)

// CycleType is the recurrence class of a task. It governs the rollover
// interval applied when a completed or overdue instance is carried into
// the next cycle.
type CycleType string

const (
	// CycleNone marks a one-off task with no recurrence.
	CycleNone CycleType = ""

	// CycleDaily rolls the task over by one day per cycle.
	CycleDaily CycleType = "daily"

	// CycleWeekly rolls the task over by seven days per cycle.
	CycleWeekly CycleType = "weekly"
)

// Valid reports whether c is one of the recognized cycle values,
// including the unset one-off value.
func (c CycleType) Valid() bool {
	switch c {
	case CycleNone, CycleDaily, CycleWeekly:
		return true
	default:
		return false
	}
}

// Recurring reports whether c makes a task eligible for next-cycle
// instance creation. Only daily and weekly tasks are eligible.
func (c CycleType) Recurring() bool {
	return c == CycleDaily || c == CycleWeekly
}

// NextDate returns the next cycle date after from: one day later for
// daily tasks, seven days later for weekly tasks. It panics for
// non-recurring cycles, which callers must filter out first.
func (c CycleType) NextDate(from time.Time) time.Time {
	switch c {
	case CycleDaily:
		return from.AddDate(0, 0, 1)
	case CycleWeekly:
		return from.AddDate(0, 0, 7)
	default:
		// ALLOW-PANIC: eligibility is checked before cycle arithmetic
		panic(fmt.Sprintf("NextDate called on non-recurring cycle %q", c))
	}
}

// DueTime is a time of day expressed as minutes after midnight.
// The zero value means midnight, the default deadline.
type DueTime int

// NewDueTime builds a DueTime from an hour and minute of the day.
func NewDueTime(hour, minute int) DueTime {
	return DueTime(hour*60 + minute)
}

// On anchors the time of day onto the given date, in that date's location.
func (d DueTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(d)/60, int(d)%60, 0, 0, date.Location())
}

// Task represents one unit of work, either a one-off or one generation of
// a recurring task. Generations spawned from the same root share the
// root's id through OriginalID, which never changes once derived.
type Task struct {
	ID          string
	OriginalID  string
	Name        string
	Description string
	TeamID      string // empty for personal tasks
	Cycle       CycleType
	Due         DueTime
	DueDate     *time.Time
	CreatedAt   time.Time
}

// instanceSuffix matches the datestamp suffix appended to generated
// instance ids: "<root>_<YYYYMMDD>".
var instanceSuffix = regexp.MustCompile(`_\d{8}$`)

// DeriveOriginalID maps a task id back to its root id by stripping the
// instance datestamp suffix convention. A root id maps to itself.
func DeriveOriginalID(taskID string) string {
	for instanceSuffix.MatchString(taskID) {
		taskID = taskID[:instanceSuffix.FindStringIndex(taskID)[0]]
	}
	return taskID
}

// InstanceID derives the deterministic id of the instance of a root task
// on the given date. Repeated derivations for the same inputs collide on
// purpose: creation attempts for the same (root, date) are idempotent.
func InstanceID(originalID string, date time.Time) string {
	return originalID + "_" + date.Format("20060102")
}

// NewTask creates a root Task with a fresh id and its OriginalID derived
// from it. Returns an error if validation fails.
func NewTask(
	name, description, teamID string,
	cycle CycleType,
	due DueTime,
	dueDate *time.Time,
) (*Task, error) {
	id := uuid.NewString()
	task := &Task{
		ID:          id,
		OriginalID:  DeriveOriginalID(id),
		Name:        name,
		Description: description,
		TeamID:      teamID,
		Cycle:       cycle,
		Due:         due,
		DueDate:     dueDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrTaskIDEmpty
	}

	if t.OriginalID == "" {
		return ErrTaskOriginalIDEmpty
	}

	if t.Name == "" {
		return ErrTaskNameEmpty
	}

	if !t.Cycle.Valid() {
		return ErrTaskCycleInvalid
	}

	return nil
}

// DeadlineOn returns the task's deadline instant on the given date:
// the date at the task's due time of day.
func (t *Task) DeadlineOn(date time.Time) time.Time {
	return t.Due.On(date)
}

// NextInstance returns the copy of the task for the target date: same
// name, description, cycle, and due time, instance id derived from the
// root, and the due date moved to the target.
func (t *Task) NextInstance(target time.Time) *Task {
	due := target
	return &Task{
		ID:          InstanceID(t.OriginalID, target),
		OriginalID:  t.OriginalID,
		Name:        t.Name,
		Description: t.Description,
		TeamID:      t.TeamID,
		Cycle:       t.Cycle,
		Due:         t.Due,
		DueDate:     &due,
		CreatedAt:   time.Now().UTC(),
	}
}
