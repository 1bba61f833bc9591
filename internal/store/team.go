package store

import "context"

// TeamDirectory enumerates team identifiers for fleet-wide sweeps.
type TeamDirectory interface {
	// ListTeamIDs returns the id of every team known to the directory.
	ListTeamIDs(ctx context.Context) ([]string, error)
}
