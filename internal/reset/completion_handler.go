package reset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PJ2-group2/HabitLink-sub000/internal/events"
)

// CompletionHandler reacts to task completion events by attempting an
// immediate reset for the completing user, so a freshly finished task
// rolls over without waiting for the next scheduled sweep.
type CompletionHandler struct {
	engine   *Engine
	resolver *Resolver
	logger   *slog.Logger
}

// NewCompletionHandler creates a handler over the given engine and
// resolver. If logger is nil, the default logger will be used.
func NewCompletionHandler(engine *Engine, resolver *Resolver, logger *slog.Logger) *CompletionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &CompletionHandler{
		engine:   engine,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "completion_handler")),
	}
}

// Ensure CompletionHandler implements events.EventHandler
var _ events.EventHandler = (*CompletionHandler)(nil)

// HandleEvent resolves the completed task's lineage and runs the
// single-pair reset primitive for it.
func (h *CompletionHandler) HandleEvent(ctx context.Context, event *events.TaskCompletedEvent) error {
	task, teamID, err := h.resolver.FindTask(ctx, event.TaskID)
	if err != nil {
		return fmt.Errorf("completion reset for task %s: %w", event.TaskID, err)
	}

	created, err := h.engine.ResetOne(ctx, task, event.UserID, h.engine.Now(), teamID)
	if err != nil {
		return fmt.Errorf("completion reset for task %s: %w", event.TaskID, err)
	}

	h.logger.Debug("handled completion event",
		"task_id", event.TaskID,
		"user_id", event.UserID,
		"created", created)
	return nil
}
