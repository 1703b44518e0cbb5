package store

import (
	"context"
	"time"
)

// Match is a finished match as kept in the history log.
// Only ended matches are stored; nothing is ever restored from it.
type Match struct {
	ID         int64
	SessionID  string
	FirstID    string
	SecondID   string
	FirstRole  string
	SecondRole string
	StartedAt  time.Time
	EndedAt    time.Time
	Reason     string
}

// MatchStore handles match history persistence.
type MatchStore interface {
	// SaveMatch persists a finished match and sets its ID.
	SaveMatch(ctx context.Context, m *Match) error

	// ListMatches returns up to limit matches, most recently ended first.
	// If beforeID is provided, returns matches older than that ID.
	ListMatches(ctx context.Context, limit int, beforeID *int64) ([]*Match, error)

	// CountMatches returns the number of stored matches.
	CountMatches(ctx context.Context) (int64, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MatchStore

	// Close closes the underlying database connection.
	Close() error
}
