package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/matchwire/internal/store"
)

// Schema creates the match history tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS matches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL UNIQUE,
	first_id    TEXT NOT NULL,
	second_id   TEXT NOT NULL,
	first_role  TEXT NOT NULL,
	second_role TEXT NOT NULL,
	started_at  DATETIME NOT NULL,
	ended_at    DATETIME NOT NULL,
	reason      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_matches_ended ON matches(ended_at DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies Schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate applies Schema to db.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMatch persists a finished match.
func (s *SQLiteStore) SaveMatch(ctx context.Context, m *store.Match) error {
	query := `
		INSERT INTO matches (session_id, first_id, second_id, first_role, second_role, started_at, ended_at, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		m.SessionID, m.FirstID, m.SecondID, m.FirstRole, m.SecondRole,
		m.StartedAt.UTC(), m.EndedAt.UTC(), m.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	m.ID = id
	return nil
}

// ListMatches retrieves matches, newest first, with pagination.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int, beforeID *int64) ([]*store.Match, error) {
	var query string
	var args []interface{}

	if beforeID != nil {
		query = `
			SELECT id, session_id, first_id, second_id, first_role, second_role, started_at, ended_at, reason
			FROM matches
			WHERE id < ?
			ORDER BY id DESC
			LIMIT ?
		`
		args = []interface{}{*beforeID, limit}
	} else {
		query = `
			SELECT id, session_id, first_id, second_id, first_role, second_role, started_at, ended_at, reason
			FROM matches
			ORDER BY id DESC
			LIMIT ?
		`
		args = []interface{}{limit}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []*store.Match
	for rows.Next() {
		var m store.Match
		if err := rows.Scan(
			&m.ID, &m.SessionID, &m.FirstID, &m.SecondID, &m.FirstRole, &m.SecondRole,
			&m.StartedAt, &m.EndedAt, &m.Reason,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	return matches, nil
}

// CountMatches returns the number of stored matches.
func (s *SQLiteStore) CountMatches(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}
