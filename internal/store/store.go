package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saurav/teachback/internal/rating"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and provides access to repositories.
type Store struct {
	db  *sql.DB
	seq *sequenceCounter
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init sequence counter: %w", err)
	}

	return &Store{db: db, seq: seq}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SnapshotRepo returns a SnapshotRepo backed by this store.
func (s *Store) SnapshotRepo() SnapshotRepo {
	return &snapshotRepo{db: s.db, seq: s.seq}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, seq: s.seq}
}

// RatingRepo returns a rating.Repo backed by this store.
func (s *Store) RatingRepo() rating.Repo {
	return &ratingRepo{db: s.db, seq: s.seq}
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// migrate creates missing tables. All DDL is idempotent; there is no
// versioned migration history for a single-user local database.
func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence  INTEGER NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			data      TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			topic         TEXT NOT NULL,
			dimension     TEXT NOT NULL,
			rating        INTEGER NOT NULL,
			k_factor      INTEGER NOT NULL,
			session_count INTEGER NOT NULL,
			peak_rating   INTEGER NOT NULL,
			PRIMARY KEY (topic, dimension)
		)`,
		`CREATE TABLE IF NOT EXISTS rating_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence      INTEGER NOT NULL,
			topic         TEXT NOT NULL,
			dimension     TEXT NOT NULL,
			rating_before INTEGER NOT NULL,
			rating_after  INTEGER NOT NULL,
			delta         INTEGER NOT NULL,
			timestamp     TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS session_events (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence     INTEGER NOT NULL,
			timestamp    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			session_id   TEXT NOT NULL,
			topic        TEXT NOT NULL,
			action       TEXT NOT NULL,
			turns        INTEGER NOT NULL DEFAULT 0,
			avg_quality  REAL NOT NULL DEFAULT 0,
			grade        TEXT NOT NULL DEFAULT '',
			legacy_score INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS review_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence      INTEGER NOT NULL,
			timestamp     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			concept       TEXT NOT NULL,
			quality       INTEGER NOT NULL,
			interval_days INTEGER NOT NULL,
			ease_factor   REAL NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS badge_events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence  INTEGER NOT NULL,
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			badge_id  TEXT NOT NULL,
			tier      TEXT NOT NULL,
			reason    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			sequence      INTEGER NOT NULL,
			timestamp     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			provider      TEXT NOT NULL,
			model         TEXT NOT NULL,
			purpose       TEXT NOT NULL,
			input_tokens  INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			latency_ms    INTEGER NOT NULL,
			success       INTEGER NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			request_body  TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. TEACHBACK_DB environment variable
// 2. $XDG_DATA_HOME/teachback/teachback.db
// 3. ~/.local/share/teachback/teachback.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("TEACHBACK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "teachback", "teachback.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
