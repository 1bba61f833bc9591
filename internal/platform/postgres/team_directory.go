package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PJ2-group2/HabitLink-sub000/internal/store"
)

// PostgresTeamDirectory implements the store.TeamDirectory interface
// using a PostgreSQL database as the storage backend.
type PostgresTeamDirectory struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTeamDirectory creates a new PostgreSQL implementation of the
// TeamDirectory interface. If logger is nil, the default logger will be used.
func NewPostgresTeamDirectory(db store.DBTX, logger *slog.Logger) *PostgresTeamDirectory {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTeamDirectory{
		db:     db,
		logger: logger.With(slog.String("component", "team_directory")),
	}
}

// Ensure PostgresTeamDirectory implements store.TeamDirectory interface
var _ store.TeamDirectory = (*PostgresTeamDirectory)(nil)

// ListTeamIDs implements store.TeamDirectory.ListTeamIDs.
func (s *PostgresTeamDirectory) ListTeamIDs(ctx context.Context) ([]string, error) {
	query := `SELECT id FROM teams ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}

	return ids, nil
}
