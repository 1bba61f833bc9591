package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/config"
	"github.com/PJ2-group2/HabitLink-sub000/internal/scheduler"
)

// countingSweeper records SweepAll invocations.
type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) SweepAll(context.Context) (int, int, error) {
	s.calls.Add(1)
	return 2, 5, nil
}

// blockingSweeper blocks inside SweepAll until released or the sweep
// context is cancelled.
type blockingSweeper struct {
	calls     atomic.Int32
	started   chan struct{}
	release   chan struct{}
	cancelled atomic.Bool
}

func newBlockingSweeper() *blockingSweeper {
	return &blockingSweeper{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (s *blockingSweeper) SweepAll(ctx context.Context) (int, int, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		s.cancelled.Store(true)
	}
	return 0, 0, nil
}

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		Timezone:             "UTC",
		SweepHour:            0,
		ShutdownGraceSeconds: 1,
		CatchUpOnStart:       false,
	}
}

func TestNewRequiresSweeper(t *testing.T) {
	t.Parallel()

	_, err := scheduler.New(nil, testConfig(), nil)
	assert.ErrorIs(t, err, scheduler.ErrNilSweeper)
}

func TestNewRejectsBadTimezone(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus"

	_, err := scheduler.New(&countingSweeper{}, cfg, nil)
	assert.Error(t, err)
}

func TestStartRunsCatchUpSweep(t *testing.T) {
	t.Parallel()

	sweeper := &countingSweeper{}
	cfg := testConfig()
	cfg.CatchUpOnStart = true

	s, err := scheduler.New(sweeper, cfg, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	// Start is synchronous for the catch-up sweep.
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestStartTwiceFails(t *testing.T) {
	t.Parallel()

	s, err := scheduler.New(&countingSweeper{}, testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.ErrorIs(t, s.Start(), scheduler.ErrAlreadyStarted)
}

func TestStartConcurrent(t *testing.T) {
	t.Parallel()

	s, err := scheduler.New(&countingSweeper{}, testConfig(), nil)
	require.NoError(t, err)

	var succeeded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Start() == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()
	defer s.Stop()

	assert.Equal(t, int32(1), succeeded.Load(), "exactly one Start call wins")
}

func TestStopDisarmsPendingDelayedFiring(t *testing.T) {
	t.Parallel()

	sweeper := &countingSweeper{}
	s, err := scheduler.New(sweeper, testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	s.TriggerAfter(200 * time.Millisecond)
	s.Stop()

	// The armed firing must not go off after shutdown.
	time.Sleep(400 * time.Millisecond)
	assert.Zero(t, sweeper.calls.Load())
}

func TestTriggerNow(t *testing.T) {
	t.Parallel()

	sweeper := &countingSweeper{}
	s, err := scheduler.New(sweeper, testConfig(), nil)
	require.NoError(t, err)

	teams, resets, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, teams)
	assert.Equal(t, 5, resets)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestOverlappingFiringIsSkipped(t *testing.T) {
	t.Parallel()

	sweeper := newBlockingSweeper()
	s, err := scheduler.New(sweeper, testConfig(), nil)
	require.NoError(t, err)

	s.TriggerAfter(0)
	<-sweeper.started

	// Second firing while the first sweep is still in flight: skipped
	// entirely, not queued.
	s.TriggerAfter(0)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), sweeper.calls.Load())

	close(sweeper.release)
}

func TestTriggerAfterFires(t *testing.T) {
	t.Parallel()

	sweeper := &countingSweeper{}
	s, err := scheduler.New(sweeper, testConfig(), nil)
	require.NoError(t, err)

	s.TriggerAfter(10 * time.Millisecond)

	assert.Eventually(t, func() bool {
		return sweeper.calls.Load() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStopForceCancelsStuckSweep(t *testing.T) {
	t.Parallel()

	sweeper := newBlockingSweeper()
	s, err := scheduler.New(sweeper, testConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())

	s.TriggerAfter(0)
	<-sweeper.started

	// Never release: Stop must give up after the grace period and
	// cancel the sweep context.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the grace period")
	}

	assert.Eventually(t, func() bool {
		return sweeper.cancelled.Load()
	}, time.Second, 10*time.Millisecond)
}
