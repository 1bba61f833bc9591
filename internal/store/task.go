package store

import (
	"context"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// ListRecurring returns every task in the team's scope whose cycle
	// makes it eligible for reset evaluation (daily or weekly). One-off
	// tasks are filtered out by the implementation.
	ListRecurring(ctx context.Context, teamID string) ([]*domain.Task, error)

	// ListByTeam returns every task in the team's scope regardless of
	// cycle. Used by the lineage resolver's ownership scan.
	ListByTeam(ctx context.Context, teamID string) ([]*domain.Task, error)

	// Create saves a new task record. The task must be valid according
	// to domain validation rules. Returns ErrDuplicate if a task with
	// the same ID already exists.
	Create(ctx context.Context, task *domain.Task) error
}
