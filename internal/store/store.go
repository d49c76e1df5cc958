// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers, their derived records, scores and
// watchlists in SQLite.
//
// Derived records (enrichments, extractions, benchmark mappings) are
// append-only. Readers see only the latest row per paper, chosen by
// created_at and then insertion order, through the latest_* views. Every
// derived row references its paper with ON DELETE CASCADE. Timestamps are
// stored as fixed-width UTC text so that string order is time order.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Errors.
var (
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a uniqueness violation on an idempotent insert.
	// Callers treat it as "already recorded".
	ErrConflict = errors.New("already exists")
)

// TimeLayout is the storage format of every timestamp. It has millisecond
// precision, matching the feed cursor.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Store manages the paper-radar SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows one writer; a single connection serializes the
	// enrichment workers instead of failing them with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			arxiv_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL,
			authors TEXT NOT NULL,
			categories TEXT NOT NULL,
			primary_category TEXT NOT NULL,
			published_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			links TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published_at DESC, id DESC)`,

		`CREATE TABLE IF NOT EXISTS enrichments (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			code_urls TEXT NOT NULL,
			primary_repo TEXT NOT NULL,
			stars INTEGER,
			license TEXT,
			has_weights BOOLEAN,
			readme_excerpt TEXT NOT NULL,
			readme_hash TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_enrichments_paper ON enrichments(paper_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS extractions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			method TEXT,
			tasks TEXT NOT NULL,
			datasets TEXT NOT NULL,
			benchmarks TEXT NOT NULL,
			sota_claims TEXT NOT NULL,
			code_urls TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_paper ON extractions(paper_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS benchmark_mappings (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			found BOOLEAN NOT NULL,
			paper_url TEXT NOT NULL,
			repo_url TEXT NOT NULL,
			repo_stars INTEGER,
			search_url TEXT NOT NULL,
			leaderboards TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_benchmark_mappings_paper ON benchmark_mappings(paper_id, created_at)`,

		`CREATE TABLE IF NOT EXISTS scores (
			paper_id TEXT PRIMARY KEY REFERENCES papers(id) ON DELETE CASCADE,
			global_score REAL NOT NULL,
			recency REAL NOT NULL,
			code REAL NOT NULL,
			stars REAL NOT NULL,
			watchlist REAL NOT NULL,
			computed_at TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS watchlists (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			name TEXT NOT NULL,
			terms TEXT NOT NULL,
			categories TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlists_user ON watchlists(user_id, created_at)`,
	}
	for _, table := range []string{"enrichments", "extractions", "benchmark_mappings"} {
		statements = append(statements, fmt.Sprintf(`CREATE VIEW IF NOT EXISTS latest_%[1]s AS
			SELECT * FROM (
				SELECT t.*, ROW_NUMBER() OVER (PARTITION BY paper_id ORDER BY created_at DESC, seq DESC) AS rn
				FROM %[1]s t
			) WHERE rn = 1`, table))
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// toJSON encodes a list column. Nil slices are stored as [].
func toJSON[T any](v []T) string {
	if v == nil {
		return "[]"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func fromJSON[T any](s sql.NullString) ([]T, error) {
	out := []T{}
	if !s.Valid || s.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s.String), &out); err != nil {
		return nil, fmt.Errorf("decoding list column: %w", err)
	}
	return out, nil
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolOrNil(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func stringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func boolPtr(n sql.NullBool) *bool {
	if !n.Valid {
		return nil
	}
	v := n.Bool
	return &v
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
