package api_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/api"
	"github.com/PJ2-group2/HabitLink-sub000/internal/config"
	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/events"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/memory"
	"github.com/PJ2-group2/HabitLink-sub000/internal/reset"
	"github.com/PJ2-group2/HabitLink-sub000/internal/scheduler"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServer wires the full stack over in-memory stores.
type testServer struct {
	srv      *httptest.Server
	tasks    *memory.TaskStore
	statuses *memory.StatusStore
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	tasks := memory.NewTaskStore()
	statuses := memory.NewStatusStore()
	teams := memory.NewTeamDirectory("A")
	index := reset.NewTeamIndex()

	engine, err := reset.NewEngine(tasks, statuses, teams, index, nil, nil,
		reset.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	resolver := reset.NewResolver(tasks, teams, index, nil)

	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(reset.NewCompletionHandler(engine, resolver, nil))

	sched, err := scheduler.New(engine, config.SchedulerConfig{
		Timezone:             "UTC",
		ShutdownGraceSeconds: 1,
	}, nil)
	require.NoError(t, err)

	handler := api.NewResetHandler(sched, engine, emitter, newTestLogger())
	router := api.NewRouter(handler, prometheus.NewRegistry())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, tasks: tasks, statuses: statuses}
}

func (ts *testServer) post(t *testing.T, path string) (int, string) {
	t.Helper()

	resp, err := http.Post(ts.srv.URL+path, "text/plain", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// seedCompletedDaily adds a daily task in team A that u1 completed
// before its 09:00 deadline on 2025-07-01.
func (ts *testServer) seedCompletedDaily(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	task := &domain.Task{
		ID:         "t1",
		OriginalID: "t1",
		Name:       "standup",
		TeamID:     "A",
		Cycle:      domain.CycleDaily,
		Due:        domain.NewDueTime(9, 0),
	}
	require.NoError(t, ts.tasks.Create(ctx, task))

	completed := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	status := &domain.UserTaskStatus{
		UserID:         "u1",
		TaskID:         "t1",
		Date:           time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		OriginalTaskID: "t1",
		TeamID:         "A",
		IsDone:         true,
		CompletedAt:    &completed,
	}
	require.NoError(t, ts.statuses.Upsert(ctx, status))
}

func TestTriggerAll(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))
	ts.seedCompletedDaily(t)

	code, body := ts.post(t, "/api/reset/trigger")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "1 teams processed")
	assert.Contains(t, body, "1 resets")
}

func TestTriggerTeam(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))
	ts.seedCompletedDaily(t)

	code, body := ts.post(t, "/api/reset/teams/A")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "sweep of team A finished: 1 resets")
}

func TestTriggerDelayedValidation(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))

	code, _ := ts.post(t, "/api/reset/delay?seconds=1")
	assert.Equal(t, http.StatusAccepted, code)

	code, _ = ts.post(t, "/api/reset/delay?seconds=nope")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCompletionHookCreatesNextInstance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))
	ts.seedCompletedDaily(t)

	code, body := ts.post(t, "/api/tasks/t1/complete?user=u1")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "reset attempt for task t1 by user u1 done")

	got, err := ts.statuses.FindOne(
		context.Background(), "u1", "t1",
		time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, "t1_20250702", got.TaskID)
	assert.False(t, got.IsDone)
}

func TestCompletionHookUnknownTask(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC))

	code, _ := ts.post(t, "/api/tasks/ghost/complete?user=u1")
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, time.Now())

	resp, err := http.Get(ts.srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
