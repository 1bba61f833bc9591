// Package api provides the HTTP trigger surface for the reset engine.
// The endpoints are thin wrappers over the scheduler and engine;
// responses are free-text human-readable status lines.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/PJ2-group2/HabitLink-sub000/internal/events"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/logger"
	"github.com/PJ2-group2/HabitLink-sub000/internal/reset"
	"github.com/PJ2-group2/HabitLink-sub000/internal/scheduler"
)

// ResetHandler handles reset trigger HTTP requests.
type ResetHandler struct {
	scheduler *scheduler.Scheduler
	engine    *reset.Engine
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(
	sched *scheduler.Scheduler,
	engine *reset.Engine,
	emitter events.EventEmitter,
	log *slog.Logger,
) *ResetHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ResetHandler")
	}

	return &ResetHandler{
		scheduler: sched,
		engine:    engine,
		emitter:   emitter,
		logger:    log.With(slog.String("component", "reset_handler")),
	}
}

// TriggerAll handles POST /api/reset/trigger requests.
// It runs a fleet-wide sweep synchronously and reports the outcome.
func (h *ResetHandler) TriggerAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	teams, resets, err := h.scheduler.TriggerNow(r.Context())
	if err != nil {
		log.Error("manual sweep failed", "error", err)
		respondText(w, http.StatusInternalServerError, "sweep failed: %v", err)
		return
	}

	respondText(w, http.StatusOK, "sweep finished: %d teams processed, %d resets", teams, resets)
}

// TriggerTeam handles POST /api/reset/teams/{teamID} requests.
// It sweeps a single team synchronously.
func (h *ResetHandler) TriggerTeam(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	teamID := chi.URLParam(r, "teamID")
	if teamID == "" {
		respondText(w, http.StatusBadRequest, "team id is required")
		return
	}

	count, err := h.engine.SweepTeam(r.Context(), teamID)
	if err != nil {
		log.Error("team sweep failed", "team_id", teamID, "error", err)
		respondText(w, http.StatusInternalServerError, "sweep of team %s failed: %v", teamID, err)
		return
	}

	respondText(w, http.StatusOK, "sweep of team %s finished: %d resets", teamID, count)
}

// TriggerDelayed handles POST /api/reset/delay?seconds=N requests.
// It arms a one-shot sweep after the given delay, for test and debug use.
func (h *ResetHandler) TriggerDelayed(w http.ResponseWriter, r *http.Request) {
	seconds, err := strconv.Atoi(r.URL.Query().Get("seconds"))
	if err != nil || seconds < 0 {
		respondText(w, http.StatusBadRequest, "seconds must be a non-negative integer")
		return
	}

	h.scheduler.TriggerAfter(time.Duration(seconds) * time.Second)
	respondText(w, http.StatusAccepted, "sweep armed to fire in %d seconds", seconds)
}

// Complete handles POST /api/tasks/{taskID}/complete?user=U requests,
// the immediate-reset hook invoked whenever a user marks a task
// complete. The completion itself is recorded by the upstream task CRUD;
// this hook only triggers the reset attempt.
func (h *ResetHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID := chi.URLParam(r, "taskID")
	userID := r.URL.Query().Get("user")
	if taskID == "" || userID == "" {
		respondText(w, http.StatusBadRequest, "task id and user are required")
		return
	}

	event := events.NewTaskCompletedEvent(userID, taskID, h.engine.Now())
	if err := h.emitter.EmitEvent(r.Context(), event); err != nil {
		log.Error("completion reset failed",
			"task_id", taskID,
			"user_id", userID,
			"error", err)
		respondText(w, http.StatusInternalServerError, "reset attempt for task %s failed: %v", taskID, err)
		return
	}

	respondText(w, http.StatusOK, "reset attempt for task %s by user %s done", taskID, userID)
}

// respondText writes a plain-text status line.
func respondText(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := fmt.Fprintf(w, format+"\n", args...); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
