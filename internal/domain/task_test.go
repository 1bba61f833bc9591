package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := domain.NewTask("standup", "daily standup", "A", domain.CycleDaily, domain.NewDueTime(9, 0), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, task.ID, task.OriginalID, "a root task is its own original")
	assert.Equal(t, domain.CycleDaily, task.Cycle)
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()

	_, err := domain.NewTask("", "", "A", domain.CycleDaily, 0, nil)
	assert.ErrorIs(t, err, domain.ErrTaskNameEmpty)

	_, err = domain.NewTask("standup", "", "A", domain.CycleType("monthly"), 0, nil)
	assert.ErrorIs(t, err, domain.ErrTaskCycleInvalid)
}

func TestCycleType(t *testing.T) {
	t.Parallel()

	assert.True(t, domain.CycleDaily.Recurring())
	assert.True(t, domain.CycleWeekly.Recurring())
	assert.False(t, domain.CycleNone.Recurring())
	assert.True(t, domain.CycleNone.Valid())
	assert.False(t, domain.CycleType("monthly").Valid())

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), domain.CycleDaily.NextDate(from))
	assert.Equal(t, time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC), domain.CycleWeekly.NextDate(from))
}

func TestDueTimeOn(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, day, domain.DueTime(0).On(day), "zero due time is midnight")
	assert.Equal(t,
		time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC),
		domain.NewDueTime(9, 30).On(day))
}

func TestNextInstance(t *testing.T) {
	t.Parallel()

	root := &domain.Task{
		ID:          "t1",
		OriginalID:  "t1",
		Name:        "standup",
		Description: "daily standup",
		TeamID:      "A",
		Cycle:       domain.CycleDaily,
		Due:         domain.NewDueTime(9, 0),
	}

	target := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	instance := root.NextInstance(target)

	assert.Equal(t, "t1_20250702", instance.ID)
	assert.Equal(t, "t1", instance.OriginalID)
	assert.Equal(t, root.Name, instance.Name)
	assert.Equal(t, root.Cycle, instance.Cycle)
	assert.Equal(t, root.Due, instance.Due)
	require.NotNil(t, instance.DueDate)
	assert.Equal(t, target, *instance.DueDate)

	// One more generation still points at the root.
	next := instance.NextInstance(target.AddDate(0, 0, 1))
	assert.Equal(t, "t1_20250703", next.ID)
	assert.Equal(t, "t1", next.OriginalID)
}
