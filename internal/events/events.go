// Package events provides the event types and interfaces decoupling the
// HTTP completion hook from the reset engine. The hook emits a
// completion event without knowing which handlers process it; the reset
// engine's handler reacts by attempting an immediate reset.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskCompletedEvent signals that a user marked a task instance done.
type TaskCompletedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// UserID is the user who completed the task
	UserID string `json:"user_id"`

	// TaskID is the completed task instance
	TaskID string `json:"task_id"`

	// CompletedAt is when the completion happened
	CompletedAt time.Time `json:"completed_at"`
}

// NewTaskCompletedEvent creates a TaskCompletedEvent for the given user
// and task instance.
func NewTaskCompletedEvent(userID, taskID string, completedAt time.Time) *TaskCompletedEvent {
	return &TaskCompletedEvent{
		ID:          uuid.New(),
		UserID:      userID,
		TaskID:      taskID,
		CompletedAt: completedAt,
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskCompletedEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows the HTTP layer to publish completions without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *TaskCompletedEvent) error
}
