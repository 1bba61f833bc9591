package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/PJ2-group2/HabitLink-sub000/internal/domain"
	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, the default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

const taskColumns = `id, original_id, name, description, team_id, cycle, due_minutes, due_date, created_at`

// ListRecurring implements store.TaskStore.ListRecurring.
// Only daily and weekly tasks are returned; one-off tasks never enter
// reset evaluation.
func (s *PostgresTaskStore) ListRecurring(
	ctx context.Context,
	teamID string,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE team_id = $1 AND cycle IN ($2, $3)
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID, domain.CycleDaily, domain.CycleWeekly)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// ListByTeam implements store.TaskStore.ListByTeam.
func (s *PostgresTaskStore) ListByTeam(
	ctx context.Context,
	teamID string,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE team_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTasks(rows)
}

// Create implements store.TaskStore.Create.
// Returns store.ErrDuplicate if a task with the same id already exists.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.OriginalID,
		task.Name,
		task.Description,
		nullString(task.TeamID),
		string(task.Cycle),
		int(task.Due),
		task.DueDate,
		task.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		s.logger.Error("failed to create task",
			"task_id", task.ID,
			"error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// scanTasks reads the standard task column set from the given rows.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task

	for rows.Next() {
		var t domain.Task
		var teamID sql.NullString
		var cycle string
		var dueMinutes int
		var dueDate sql.NullTime

		if err := rows.Scan(
			&t.ID,
			&t.OriginalID,
			&t.Name,
			&t.Description,
			&teamID,
			&cycle,
			&dueMinutes,
			&dueDate,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}

		t.TeamID = teamID.String
		t.Cycle = domain.CycleType(cycle)
		t.Due = domain.DueTime(dueMinutes)
		if dueDate.Valid {
			d := dueDate.Time
			t.DueDate = &d
		}

		tasks = append(tasks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// nullString maps the empty string to SQL NULL. Team scope is nullable
// in the schema; personal tasks carry no team id.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
