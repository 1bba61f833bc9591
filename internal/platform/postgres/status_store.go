package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// PostgresStatusStore implements the store.StatusStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStatusStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatusStore creates a new PostgreSQL implementation of the
// StatusStore interface. If logger is nil, the default logger will be used.
func NewPostgresStatusStore(db store.DBTX, logger *slog.Logger) *PostgresStatusStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatusStore{
		db:     db,
		logger: logger.With(slog.String("component", "status_store")),
	}
}

// Ensure PostgresStatusStore implements store.StatusStore interface
var _ store.StatusStore = (*PostgresStatusStore)(nil)

const statusColumns = `user_id, task_id, date, original_task_id, team_id, is_done, completed_at`

// FindByTask implements store.StatusStore.FindByTask.
func (s *PostgresStatusStore) FindByTask(
	ctx context.Context,
	taskID string,
) ([]*domain.UserTaskStatus, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM user_task_statuses
		WHERE task_id = $1
		ORDER BY user_id ASC, date ASC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses by task: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statuses []*domain.UserTaskStatus

	for rows.Next() {
		status, err := scanStatus(rows.Scan)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status rows: %w", err)
	}

	return statuses, nil
}

// FindOne implements store.StatusStore.FindOne.
// Returns store.ErrStatusNotFound when no record matches.
func (s *PostgresStatusStore) FindOne(
	ctx context.Context,
	userID, originalTaskID string,
	date time.Time,
) (*domain.UserTaskStatus, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM user_task_statuses
		WHERE user_id = $1 AND original_task_id = $2 AND date = $3
	`

	row := s.db.QueryRowContext(ctx, query, userID, originalTaskID, domain.CivilDate(date))

	status, err := scanStatus(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrStatusNotFound
		}
		return nil, err
	}

	return status, nil
}

// Upsert implements store.StatusStore.Upsert.
func (s *PostgresStatusStore) Upsert(ctx context.Context, status *domain.UserTaskStatus) error {
	if err := status.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO user_task_statuses (` + statusColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, task_id, date) DO UPDATE
		SET is_done = EXCLUDED.is_done,
		    completed_at = EXCLUDED.completed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		status.UserID,
		status.TaskID,
		status.Date,
		status.OriginalTaskID,
		nullString(status.TeamID),
		status.IsDone,
		status.CompletedAt,
	)

	if err != nil {
		s.logger.Error("failed to upsert status",
			"user_id", status.UserID,
			"task_id", status.TaskID,
			"error", err)
		return fmt.Errorf("failed to upsert status: %w", err)
	}

	return nil
}

// scanStatus reads the standard status column set through the given scan
// function, which is satisfied by both *sql.Row and *sql.Rows.
func scanStatus(scan func(dest ...any) error) (*domain.UserTaskStatus, error) {
	var status domain.UserTaskStatus
	var teamID sql.NullString
	var completedAt sql.NullTime

	if err := scan(
		&status.UserID,
		&status.TaskID,
		&status.Date,
		&status.OriginalTaskID,
		&teamID,
		&status.IsDone,
		&completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan status row: %w", err)
	}

	status.TeamID = teamID.String
	if completedAt.Valid {
		t := completedAt.Time
		status.CompletedAt = &t
	}

	return &status, nil
}
