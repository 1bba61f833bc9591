package store

import (
	"context"
	"time"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
)

// StatusStore defines the interface for user task status persistence.
type StatusStore interface {
	// FindByTask returns every user's status record for the given task
	// instance, across all dates.
	FindByTask(ctx context.Context, taskID string) ([]*domain.UserTaskStatus, error)

	// FindOne looks up the status record for a user, a root task id, and
	// a civil date. This is the dedup check the reset engine runs before
	// creating a next-cycle instance. Returns ErrStatusNotFound on miss.
	FindOne(
		ctx context.Context,
		userID, originalTaskID string,
		date time.Time,
	) (*domain.UserTaskStatus, error)

	// Upsert creates the status record, or overwrites the existing record
	// with the same (user, task, date) identity.
	Upsert(ctx context.Context, status *domain.UserTaskStatus) error
}
