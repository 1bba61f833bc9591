package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/events"
)

type recordingHandler struct {
	got []*events.TaskCompletedEvent
	err error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.TaskCompletedEvent) error {
	h.got = append(h.got, event)
	return h.err
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(nil)
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := events.NewTaskCompletedEvent("u1", "t1", time.Now())
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	assert.Len(t, first.got, 1)
	assert.Len(t, second.got, 1)
	assert.Equal(t, "t1", first.got[0].TaskID)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(nil)
	failing := &recordingHandler{err: errors.New("boom")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	err := emitter.EmitEvent(context.Background(), events.NewTaskCompletedEvent("u1", "t1", time.Now()))

	assert.Error(t, err, "first handler error is reported")
	assert.Len(t, healthy.got, 1, "later handlers still receive the event")
}

func TestEmitEventWithoutHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(nil)
	assert.NoError(t, emitter.EmitEvent(context.Background(), events.NewTaskCompletedEvent("u1", "t1", time.Now())))
}
