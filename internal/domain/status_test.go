package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
)

func TestNewUserTaskStatus(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 7, 1, 15, 4, 5, 0, time.UTC)

	status, err := domain.NewUserTaskStatus("u1", "t1_20250701", "t1", "A", day)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), status.Date,
		"status date is truncated to the civil date")
	assert.False(t, status.IsDone)
	assert.Nil(t, status.CompletedAt)
}

func TestNewUserTaskStatusValidation(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := domain.NewUserTaskStatus("", "t1", "t1", "A", day)
	assert.ErrorIs(t, err, domain.ErrStatusUserIDEmpty)

	_, err = domain.NewUserTaskStatus("u1", "", "t1", "A", day)
	assert.ErrorIs(t, err, domain.ErrStatusTaskIDEmpty)

	_, err = domain.NewUserTaskStatus("u1", "t1", "", "A", day)
	assert.ErrorIs(t, err, domain.ErrStatusOriginalIDEmpty)
}

func TestMarkDoneAndUndone(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	status, err := domain.NewUserTaskStatus("u1", "t1", "t1", "A", day)
	require.NoError(t, err)

	now := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)
	status.MarkDone(now)
	assert.True(t, status.IsDone)
	require.NotNil(t, status.CompletedAt)
	assert.Equal(t, now, *status.CompletedAt)

	status.MarkUndone()
	assert.False(t, status.IsDone)
	assert.Nil(t, status.CompletedAt, "undoing clears the completion timestamp")
}

func TestCivilDate(t *testing.T) {
	t.Parallel()

	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2025, 7, 1, 23, 30, 0, 0, est) // 2025-07-02T04:30 UTC

	assert.Equal(t, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), domain.CivilDate(late))
}
