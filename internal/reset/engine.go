// Package reset implements the recurring-task reconciliation engine: for
// every (user, task) pairing it decides whether a new task instance for
// the next cycle must be materialized, and materializes it exactly once,
// with lineage preserved back to the task's root definition.
package reset

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/metrics"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// Engine-specific errors
var (
	// ErrNilTaskStore is returned when an Engine is built without a task store.
	ErrNilTaskStore = errors.New("task store cannot be nil")

	// ErrNilStatusStore is returned when an Engine is built without a status store.
	ErrNilStatusStore = errors.New("status store cannot be nil")

	// ErrNilTeamDirectory is returned when an Engine is built without a team directory.
	ErrNilTeamDirectory = errors.New("team directory cannot be nil")
)

// Engine is the idempotent decision/creation core. Both the scheduled
// sweep path and the immediate-completion path go through the same
// lookup-before-create procedure, so the engine is safe to invoke from
// concurrent callers without coordination: the guarantee is at most one
// created instance per (user, root task, date), not which caller wins.
type Engine struct {
	tasks    store.TaskStore
	statuses store.StatusStore
	teams    store.TeamDirectory
	index    *TeamIndex
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option customizes Engine construction.
type Option func(*Engine)

// WithClock overrides the engine's wall clock. Deadline comparisons and
// the sweep reference date derive from this clock; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine over the given stores. The metrics may be
// nil, in which case no-op collectors are used. If logger is nil, the
// default logger will be used.
func NewEngine(
	tasks store.TaskStore,
	statuses store.StatusStore,
	teams store.TeamDirectory,
	index *TeamIndex,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...Option,
) (*Engine, error) {
	if tasks == nil {
		return nil, ErrNilTaskStore
	}
	if statuses == nil {
		return nil, ErrNilStatusStore
	}
	if teams == nil {
		return nil, ErrNilTeamDirectory
	}
	if index == nil {
		index = NewTeamIndex()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		tasks:    tasks,
		statuses: statuses,
		teams:    teams,
		index:    index,
		metrics:  m,
		logger:   logger.With(slog.String("component", "reset_engine")),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Now returns the engine's current wall-clock time. The completion path
// uses it to date immediate reset attempts consistently with sweeps.
func (e *Engine) Now() time.Time {
	return e.now()
}

// SweepAll iterates every team in the directory and sweeps each one.
// A failing team is logged and skipped; it never aborts the sweep of the
// remaining teams. Returns the number of teams processed and the total
// number of instances created.
func (e *Engine) SweepAll(ctx context.Context) (teamsProcessed, totalResets int, err error) {
	start := e.now()
	e.metrics.SweepInProgress.Set(1)
	defer e.metrics.SweepInProgress.Set(0)

	teamIDs, err := e.teams.ListTeamIDs(ctx)
	if err != nil {
		e.metrics.SweepErrorsTotal.WithLabelValues("sweep").Inc()
		return 0, 0, err
	}

	for _, teamID := range teamIDs {
		count, err := e.SweepTeam(ctx, teamID)
		if err != nil {
			e.metrics.SweepErrorsTotal.WithLabelValues("team").Inc()
			e.logger.Error("team sweep failed, continuing with next team",
				"team_id", teamID,
				"error", err)
			continue
		}
		teamsProcessed++
		totalResets += count
	}

	e.metrics.SweepsTotal.Inc()
	e.metrics.SweepDuration.Observe(e.now().Sub(start).Seconds())

	e.logger.Info("fleet sweep finished",
		"teams_processed", teamsProcessed,
		"total_resets", totalResets)
	return teamsProcessed, totalResets, nil
}

// SweepTeam pulls every recurring task for the team and evaluates every
// existing status record against that task's cycle rule. It returns the
// number of new instances actually created. A single bad record is
// logged and skipped; only a failure to list the team's tasks fails the
// whole call.
func (e *Engine) SweepTeam(ctx context.Context, teamID string) (int, error) {
	refDate := domain.CivilDate(e.now())

	tasks, err := e.tasks.ListRecurring(ctx, teamID)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, t := range tasks {
		e.index.Put(t.OriginalID, t.TeamID)

		// The store already filters, but the eligibility rule is
		// enforced on every path.
		if !t.Cycle.Recurring() {
			continue
		}

		statuses, err := e.statuses.FindByTask(ctx, t.ID)
		if err != nil {
			e.metrics.SweepErrorsTotal.WithLabelValues("record").Inc()
			e.logger.Error("failed to load statuses, skipping task",
				"team_id", teamID,
				"task_id", t.ID,
				"error", err)
			continue
		}

		for _, s := range statuses {
			created, err := e.evaluate(ctx, t, s, refDate, teamID)
			if err != nil {
				e.metrics.SweepErrorsTotal.WithLabelValues("record").Inc()
				e.logger.Error("failed to evaluate status record, skipping",
					"team_id", teamID,
					"task_id", t.ID,
					"user_id", s.UserID,
					"error", err)
				continue
			}
			if created {
				count++
			}
		}
	}

	return count, nil
}

// ResetOne is the single-(user, task) decision/creation primitive. The
// immediate-completion path calls it as soon as a user marks a task
// done, without waiting for the next scheduled sweep. Returns whether a
// new instance was created.
func (e *Engine) ResetOne(
	ctx context.Context,
	task *domain.Task,
	userID string,
	refDate time.Time,
	teamID string,
) (bool, error) {
	if !task.Cycle.Recurring() {
		return false, nil
	}

	statuses, err := e.statuses.FindByTask(ctx, task.ID)
	if err != nil {
		return false, err
	}

	created := false
	for _, s := range statuses {
		if s.UserID != userID {
			continue
		}
		ok, err := e.evaluate(ctx, task, s, domain.CivilDate(refDate), teamID)
		if err != nil {
			return created, err
		}
		if ok {
			created = true
		}
	}

	return created, nil
}

// evaluate applies the classification rule to one status record and, if
// the record calls for it, creates the next-cycle instance.
//
// Completed-before-deadline rolls over to the next cycle date; overdue
// and incomplete catches the user up at the sweep's reference date, not
// a future cycle date. Anything else needs no action.
func (e *Engine) evaluate(
	ctx context.Context,
	t *domain.Task,
	s *domain.UserTaskStatus,
	refDate time.Time,
	teamID string,
) (bool, error) {
	deadline := t.DeadlineOn(s.Date)

	var target time.Time
	switch {
	case s.IsDone && s.CompletedAt != nil && s.CompletedAt.Before(deadline):
		target = t.Cycle.NextDate(s.Date)
	case !s.IsDone && e.now().After(deadline):
		target = refDate
	default:
		return false, nil
	}

	return e.createInstance(ctx, t, s.UserID, target, teamID)
}

// createInstance runs the shared creation procedure: dedup check, task
// copy, status record. The instance id is derived deterministically from
// the root id and the target date, so retried attempts for the same
// inputs converge on the same rows.
func (e *Engine) createInstance(
	ctx context.Context,
	t *domain.Task,
	userID string,
	target time.Time,
	teamID string,
) (bool, error) {
	target = domain.CivilDate(target)

	// Dedup invariant: at most one status per (user, root task, date).
	_, err := e.statuses.FindOne(ctx, userID, t.OriginalID, target)
	if err == nil {
		// Already reset, nothing to do.
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	instance := t.NextInstance(target)
	instance.TeamID = teamID

	if err := e.tasks.Create(ctx, instance); err != nil {
		// A duplicate instance means an earlier attempt created the
		// task copy but crashed before writing the status record.
		// Proceed and repair the orphan by creating the status now.
		if !errors.Is(err, store.ErrDuplicate) {
			return false, err
		}
		e.logger.Warn("task instance already exists, repairing missing status",
			"task_id", instance.ID,
			"user_id", userID)
	}

	e.index.Put(instance.OriginalID, teamID)

	status, err := domain.NewUserTaskStatus(userID, instance.ID, t.OriginalID, teamID, target)
	if err != nil {
		return false, err
	}

	if err := e.statuses.Upsert(ctx, status); err != nil {
		return false, err
	}

	e.metrics.ResetsTotal.Inc()
	e.logger.Info("created next-cycle instance",
		"user_id", userID,
		"original_task_id", t.OriginalID,
		"instance_id", instance.ID,
		"target_date", target.Format("2006-01-02"))
	return true, nil
}
