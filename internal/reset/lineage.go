package reset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// ErrTeamNotResolved is returned when no team's task list contains the
// task id being resolved. Callers must treat this as a hard failure;
// there is no sentinel "unknown" team.
var ErrTeamNotResolved = errors.New("no owning team found for task")

// TeamIndex is a concurrency-safe map from original task id to owning
// team id. Sweeps and instance creations feed it, so after the first
// sweep most resolutions are a lookup instead of a directory scan.
type TeamIndex struct {
	mu         sync.RWMutex
	byOriginal map[string]string
}

// NewTeamIndex creates an empty index.
func NewTeamIndex() *TeamIndex {
	return &TeamIndex{byOriginal: make(map[string]string)}
}

// Put records the owning team of a root task. Personal tasks (empty team
// id) are not indexed.
func (i *TeamIndex) Put(originalID, teamID string) {
	if originalID == "" || teamID == "" {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.byOriginal[originalID] = teamID
}

// Get looks up the owning team of a root task.
func (i *TeamIndex) Get(originalID string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	teamID, ok := i.byOriginal[originalID]
	return teamID, ok
}

// Resolver maps a task instance back to its root task and owning team.
// It answers from the TeamIndex when it can and falls back to scanning
// every team's task list on a cold miss, back-filling the index as it
// scans.
type Resolver struct {
	tasks  store.TaskStore
	teams  store.TeamDirectory
	index  *TeamIndex
	logger *slog.Logger
}

// NewResolver creates a Resolver over the given stores and index.
// If logger is nil, the default logger will be used.
func NewResolver(
	tasks store.TaskStore,
	teams store.TeamDirectory,
	index *TeamIndex,
	logger *slog.Logger,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		tasks:  tasks,
		teams:  teams,
		index:  index,
		logger: logger.With(slog.String("component", "lineage_resolver")),
	}
}

// DeriveOriginalID maps a task id back to its root id. Pure; see
// domain.DeriveOriginalID for the id convention.
func (r *Resolver) DeriveOriginalID(taskID string) string {
	return domain.DeriveOriginalID(taskID)
}

// ResolveTeamID finds which team currently owns the task with the given
// id. Resolution failure returns ErrTeamNotResolved; it is never mapped
// to a placeholder team.
func (r *Resolver) ResolveTeamID(ctx context.Context, taskID string) (string, error) {
	originalID := domain.DeriveOriginalID(taskID)

	if teamID, ok := r.index.Get(originalID); ok {
		return teamID, nil
	}

	teamIDs, err := r.teams.ListTeamIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list teams for lineage scan: %w", err)
	}

	for _, teamID := range teamIDs {
		tasks, err := r.tasks.ListByTeam(ctx, teamID)
		if err != nil {
			// A broken team listing must not hide the task if another
			// team owns it; keep scanning.
			r.logger.Warn("lineage scan skipping team",
				"team_id", teamID,
				"error", err)
			continue
		}

		var found bool
		for _, t := range tasks {
			r.index.Put(t.OriginalID, teamID)
			if t.ID == taskID || t.OriginalID == originalID {
				found = true
			}
		}
		if found {
			return teamID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrTeamNotResolved, taskID)
}

// FindTask locates the task record with the given id inside its owning
// team's task list. Used by the completion path, which starts from a
// bare task id.
func (r *Resolver) FindTask(ctx context.Context, taskID string) (*domain.Task, string, error) {
	teamID, err := r.ResolveTeamID(ctx, taskID)
	if err != nil {
		return nil, "", err
	}

	tasks, err := r.tasks.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list tasks for team %s: %w", teamID, err)
	}

	for _, t := range tasks {
		if t.ID == taskID {
			return t, teamID, nil
		}
	}

	return nil, "", fmt.Errorf("%w: %s", store.ErrTaskNotFound, taskID)
}
