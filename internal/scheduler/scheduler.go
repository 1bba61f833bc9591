// Package scheduler drives the reset engine on a wall-clock-aligned
// interval. It guarantees at most one fleet-wide sweep runs at a time,
// performs a startup catch-up sweep, and exposes manual and delayed
// triggers for operators and tests.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PJ2-group2/HabitLink-sub000/internal/config"
)

// Scheduler-specific errors
var (
	// ErrNilSweeper is returned when a Scheduler is built without a sweeper.
	ErrNilSweeper = errors.New("sweeper cannot be nil")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("scheduler already started")
)

// Sweeper is the fleet-sweep operation the scheduler drives. Implemented
// by the reset engine.
type Sweeper interface {
	SweepAll(ctx context.Context) (teamsProcessed, totalResets int, err error)
}

// Scheduler fires a fleet sweep at a fixed local hour every day. A
// compare-and-swap guard skips a firing entirely if the previous sweep
// is still in flight; skipped firings are not queued or retried.
//
// The scheduler has two states, stopped and running. There is no
// pause/resume; Stop is meant to be called once, at process shutdown.
type Scheduler struct {
	sweeper Sweeper
	cron    *cron.Cron
	loc     *time.Location
	hour    int
	grace   time.Duration
	catchUp bool
	logger  *slog.Logger

	// busy is the reentrancy guard for scheduled and delayed firings.
	busy sync.Mutex

	// inFlight tracks sweeps spawned outside the cron (TriggerAfter).
	inFlight sync.WaitGroup

	// timers holds armed one-shot firings so Stop can disarm the ones
	// that have not fired yet.
	timersMu sync.Mutex
	timers   []*time.Timer

	// sweepCtx bounds every guarded sweep; cancel force-stops an
	// in-flight sweep when the shutdown grace elapses.
	sweepCtx context.Context
	cancel   context.CancelFunc

	started atomic.Bool
}

// New creates a Scheduler from the configuration. The location name in
// cfg.Timezone must resolve; the sweep fires at cfg.SweepHour local time.
func New(sweeper Sweeper, cfg config.SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	if sweeper == nil {
		return nil, ErrNilSweeper
	}
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		sweeper:  sweeper,
		cron:     cron.New(cron.WithLocation(loc)),
		loc:      loc,
		hour:     cfg.SweepHour,
		grace:    time.Duration(cfg.ShutdownGraceSeconds) * time.Second,
		catchUp:  cfg.CatchUpOnStart,
		logger:   logger.With(slog.String("component", "scheduler")),
		sweepCtx: ctx,
		cancel:   cancel,
	}, nil
}

// Start runs the catch-up sweep synchronously, then arms the daily
// schedule. The cron computes the delay to the next firing boundary
// itself, so a process started mid-day first fires at the coming
// boundary and every 24 hours after.
func (s *Scheduler) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	if s.catchUp {
		// The engine is idempotent, so sweeping unconditionally at
		// startup is safe: if no midnight was missed the sweep creates
		// nothing, and if one was missed the resets are recovered here
		// instead of being silently lost.
		s.logger.Info("running startup catch-up sweep")
		s.fire("catch-up")
	}

	spec := fmt.Sprintf("0 %d * * *", s.hour)
	if _, err := s.cron.AddFunc(spec, func() { s.fire("scheduled") }); err != nil {
		return fmt.Errorf("failed to arm sweep schedule: %w", err)
	}

	s.cron.Start()
	s.logger.Info("sweep schedule armed",
		"hour", s.hour,
		"timezone", s.loc.String())
	return nil
}

// Stop disables further firings, including armed one-shot firings that
// have not gone off yet, and waits up to the configured grace period for
// an in-flight sweep to finish, force-cancelling it if the grace elapses.
func (s *Scheduler) Stop() {
	s.timersMu.Lock()
	for _, timer := range s.timers {
		// A successfully stopped timer never runs its func, so its
		// in-flight slot is released here.
		if timer.Stop() {
			s.inFlight.Done()
		}
	}
	s.timers = nil
	s.timersMu.Unlock()

	cronCtx := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronCtx.Done()
		s.inFlight.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-time.After(s.grace):
		s.cancel()
		s.logger.Warn("shutdown grace elapsed, force-cancelling in-flight sweep",
			"grace", s.grace.String())
	}
}

// TriggerNow runs a fleet sweep synchronously, outside the periodic
// schedule, for manual operator-invoked resets. The engine's dedup
// procedure makes it safe to run alongside a scheduled sweep.
func (s *Scheduler) TriggerNow(ctx context.Context) (teamsProcessed, totalResets int, err error) {
	return s.sweeper.SweepAll(ctx)
}

// TriggerAfter arms a one-shot guarded firing after the given delay. It
// does not otherwise affect the recurring schedule.
func (s *Scheduler) TriggerAfter(delay time.Duration) {
	s.inFlight.Add(1)
	timer := time.AfterFunc(delay, func() {
		defer s.inFlight.Done()
		s.fire("delayed")
	})

	s.timersMu.Lock()
	s.timers = append(s.timers, timer)
	s.timersMu.Unlock()
}

// fire runs one guarded sweep. If a previous firing's sweep is still in
// progress the new firing is skipped entirely and logged. Any panic is
// caught here so a single bad sweep cannot disable future firings.
func (s *Scheduler) fire(reason string) {
	if !s.busy.TryLock() {
		s.logger.Warn("sweep already in progress, skipping firing",
			"reason", reason)
		return
	}
	defer s.busy.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("sweep panicked, schedule continues",
				"reason", reason,
				"panic", p)
		}
	}()

	teams, resets, err := s.sweeper.SweepAll(s.sweepCtx)
	if err != nil {
		s.logger.Error("sweep failed, schedule continues",
			"reason", reason,
			"error", err)
		return
	}

	s.logger.Info("sweep finished",
		"reason", reason,
		"teams_processed", teams,
		"total_resets", resets)
}
