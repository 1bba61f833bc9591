// Package memory contains in-memory implementations of the store
// interfaces. They back the unit tests and the "memory" database backend
// used for local development without a PostgreSQL instance.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// TaskStore is a mutex-guarded in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task // keyed by task id
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*domain.Task)}
}

// Ensure TaskStore implements store.TaskStore interface
var _ store.TaskStore = (*TaskStore)(nil)

// ListRecurring implements store.TaskStore.ListRecurring.
func (s *TaskStore) ListRecurring(_ context.Context, teamID string) ([]*domain.Task, error) {
	return s.list(teamID, true), nil
}

// ListByTeam implements store.TaskStore.ListByTeam.
func (s *TaskStore) ListByTeam(_ context.Context, teamID string) ([]*domain.Task, error) {
	return s.list(teamID, false), nil
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID]; exists {
		return store.ErrDuplicate
	}

	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *TaskStore) list(teamID string, recurringOnly bool) []*domain.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []*domain.Task
	for _, t := range s.tasks {
		if t.TeamID != teamID {
			continue
		}
		if recurringOnly && !t.Cycle.Recurring() {
			continue
		}
		clone := *t
		tasks = append(tasks, &clone)
	}

	// Map iteration order is random; sweeps expect a deterministic
	// per-run order.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// StatusStore is a mutex-guarded in-memory store.StatusStore.
type StatusStore struct {
	mu       sync.RWMutex
	statuses map[statusKey]*domain.UserTaskStatus
}

type statusKey struct {
	userID string
	taskID string
	date   time.Time
}

// NewStatusStore creates an empty in-memory status store.
func NewStatusStore() *StatusStore {
	return &StatusStore{statuses: make(map[statusKey]*domain.UserTaskStatus)}
}

// Ensure StatusStore implements store.StatusStore interface
var _ store.StatusStore = (*StatusStore)(nil)

// FindByTask implements store.StatusStore.FindByTask.
func (s *StatusStore) FindByTask(_ context.Context, taskID string) ([]*domain.UserTaskStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var statuses []*domain.UserTaskStatus
	for _, st := range s.statuses {
		if st.TaskID == taskID {
			clone := *st
			statuses = append(statuses, &clone)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].UserID != statuses[j].UserID {
			return statuses[i].UserID < statuses[j].UserID
		}
		return statuses[i].Date.Before(statuses[j].Date)
	})
	return statuses, nil
}

// FindOne implements store.StatusStore.FindOne.
func (s *StatusStore) FindOne(
	_ context.Context,
	userID, originalTaskID string,
	date time.Time,
) (*domain.UserTaskStatus, error) {
	day := domain.CivilDate(date)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.statuses {
		if st.UserID == userID && st.OriginalTaskID == originalTaskID && st.Date.Equal(day) {
			clone := *st
			return &clone, nil
		}
	}

	return nil, store.ErrStatusNotFound
}

// Upsert implements store.StatusStore.Upsert.
func (s *StatusStore) Upsert(_ context.Context, status *domain.UserTaskStatus) error {
	if err := status.Validate(); err != nil {
		return store.ErrInvalidEntity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *status
	clone.Date = domain.CivilDate(status.Date)
	s.statuses[statusKey{status.UserID, status.TaskID, clone.Date}] = &clone
	return nil
}

// TeamDirectory is a mutex-guarded in-memory store.TeamDirectory.
type TeamDirectory struct {
	mu    sync.RWMutex
	teams map[string]struct{}
}

// NewTeamDirectory creates a directory holding the given team ids.
func NewTeamDirectory(teamIDs ...string) *TeamDirectory {
	d := &TeamDirectory{teams: make(map[string]struct{})}
	for _, id := range teamIDs {
		d.teams[id] = struct{}{}
	}
	return d
}

// Ensure TeamDirectory implements store.TeamDirectory interface
var _ store.TeamDirectory = (*TeamDirectory)(nil)

// Add registers a team id with the directory.
func (d *TeamDirectory) Add(teamID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.teams[teamID] = struct{}{}
}

// ListTeamIDs implements store.TeamDirectory.ListTeamIDs.
func (d *TeamDirectory) ListTeamIDs(_ context.Context) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.teams))
	for id := range d.teams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
