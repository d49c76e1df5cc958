// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// stamp fills in a missing id and creation time.
func (s *Store) stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = s.now()
	}
	*createdAt = createdAt.UTC().Truncate(time.Millisecond)
}

// InsertEnrichment appends an enrichment record.
func (s *Store) InsertEnrichment(ctx context.Context, r *types.EnrichmentRecord) error {
	s.stamp(&r.ID, &r.CreatedAt)
	_, err := s.db.ExecContext(ctx, `INSERT INTO enrichments
		(id, paper_id, code_urls, primary_repo, stars, license, has_weights, readme_excerpt, readme_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.PaperID, toJSON(r.CodeURLs), r.PrimaryRepo, intOrNil(r.Stars), stringOrNil(r.License),
		boolOrNil(r.HasWeights), r.ReadmeExcerpt, r.ReadmeHash, formatTime(r.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting enrichment %s: %w", r.ID, ErrConflict)
		}
		return fmt.Errorf("inserting enrichment for %s: %w", r.PaperID, err)
	}
	return nil
}

// LatestEnrichment returns the newest enrichment record of a paper, or nil.
func (s *Store) LatestEnrichment(ctx context.Context, paperID string) (*types.EnrichmentRecord, error) {
	var (
		r          types.EnrichmentRecord
		codeURLs   sql.NullString
		stars      sql.NullInt64
		license    sql.NullString
		hasWeights sql.NullBool
		createdAt  string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, paper_id, code_urls, primary_repo, stars, license, has_weights,
		readme_excerpt, readme_hash, created_at FROM latest_enrichments WHERE paper_id = ?`, paperID).
		Scan(&r.ID, &r.PaperID, &codeURLs, &r.PrimaryRepo, &stars, &license, &hasWeights,
			&r.ReadmeExcerpt, &r.ReadmeHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading enrichment of %s: %w", paperID, err)
	}
	if r.CodeURLs, err = fromJSON[string](codeURLs); err != nil {
		return nil, err
	}
	r.Stars = intPtr(stars)
	r.License = stringPtr(license)
	r.HasWeights = boolPtr(hasWeights)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertExtraction appends a structured extraction.
func (s *Store) InsertExtraction(ctx context.Context, x *types.StructuredExtraction) error {
	s.stamp(&x.ID, &x.CreatedAt)
	_, err := s.db.ExecContext(ctx, `INSERT INTO extractions
		(id, paper_id, method, tasks, datasets, benchmarks, sota_claims, code_urls, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		x.ID, x.PaperID, stringOrNil(x.Method), toJSON(x.Tasks), toJSON(x.Datasets), toJSON(x.Benchmarks),
		toJSON(x.SOTAClaims), toJSON(x.CodeURLs), formatTime(x.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting extraction %s: %w", x.ID, ErrConflict)
		}
		return fmt.Errorf("inserting extraction for %s: %w", x.PaperID, err)
	}
	return nil
}

// LatestExtraction returns the newest extraction of a paper, or nil.
func (s *Store) LatestExtraction(ctx context.Context, paperID string) (*types.StructuredExtraction, error) {
	var (
		x                                   types.StructuredExtraction
		method                              sql.NullString
		tasks, datasets, benchmarks, claims sql.NullString
		codeURLs                            sql.NullString
		createdAt                           string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, paper_id, method, tasks, datasets, benchmarks, sota_claims,
		code_urls, created_at FROM latest_extractions WHERE paper_id = ?`, paperID).
		Scan(&x.ID, &x.PaperID, &method, &tasks, &datasets, &benchmarks, &claims, &codeURLs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading extraction of %s: %w", paperID, err)
	}
	x.Method = stringPtr(method)
	if x.Tasks, err = fromJSON[string](tasks); err != nil {
		return nil, err
	}
	if x.Datasets, err = fromJSON[string](datasets); err != nil {
		return nil, err
	}
	if x.Benchmarks, err = fromJSON[string](benchmarks); err != nil {
		return nil, err
	}
	if x.SOTAClaims, err = fromJSON[types.SOTAClaim](claims); err != nil {
		return nil, err
	}
	if x.CodeURLs, err = fromJSON[string](codeURLs); err != nil {
		return nil, err
	}
	if x.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &x, nil
}

// InsertBenchmarkMapping appends a mapping. A mapping whose fingerprint
// equals the paper's latest mapping returns ErrConflict; a fingerprint seen
// only on older rows is appended so the newest result always wins.
func (s *Store) InsertBenchmarkMapping(ctx context.Context, m *types.BenchmarkMapping) error {
	s.stamp(&m.ID, &m.CreatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var latest string
	err = tx.QueryRowContext(ctx, `SELECT fingerprint FROM latest_benchmark_mappings WHERE paper_id = ?`, m.PaperID).
		Scan(&latest)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading latest benchmark mapping of %s: %w", m.PaperID, err)
	case latest == m.Fingerprint:
		return fmt.Errorf("benchmark mapping for %s: %w", m.PaperID, ErrConflict)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO benchmark_mappings
		(id, paper_id, found, paper_url, repo_url, repo_stars, search_url, leaderboards, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.PaperID, m.Found, m.PaperURL, m.RepoURL, intOrNil(m.RepoStars), m.SearchURL,
		toJSON(m.Leaderboards), m.Fingerprint, formatTime(m.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("benchmark mapping %s: %w", m.ID, ErrConflict)
		}
		return fmt.Errorf("inserting benchmark mapping for %s: %w", m.PaperID, err)
	}
	return tx.Commit()
}

// LatestBenchmarkMapping returns the newest mapping of a paper, or nil.
func (s *Store) LatestBenchmarkMapping(ctx context.Context, paperID string) (*types.BenchmarkMapping, error) {
	var (
		m            types.BenchmarkMapping
		repoStars    sql.NullInt64
		leaderboards sql.NullString
		createdAt    string
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, paper_id, found, paper_url, repo_url, repo_stars, search_url,
		leaderboards, fingerprint, created_at FROM latest_benchmark_mappings WHERE paper_id = ?`, paperID).
		Scan(&m.ID, &m.PaperID, &m.Found, &m.PaperURL, &m.RepoURL, &repoStars, &m.SearchURL,
			&leaderboards, &m.Fingerprint, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading benchmark mapping of %s: %w", paperID, err)
	}
	m.RepoStars = intPtr(repoStars)
	if m.Leaderboards, err = fromJSON[types.LeaderboardLink](leaderboards); err != nil {
		return nil, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertScore writes the stored score of a paper, replacing any previous one.
func (s *Store) UpsertScore(ctx context.Context, rec types.ScoreRecord) error {
	if rec.ComputedAt.IsZero() {
		rec.ComputedAt = s.now()
	}
	c := rec.Score.Components
	_, err := s.db.ExecContext(ctx, `INSERT INTO scores (paper_id, global_score, recency, code, stars, watchlist, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(paper_id) DO UPDATE SET
			global_score = excluded.global_score,
			recency = excluded.recency,
			code = excluded.code,
			stars = excluded.stars,
			watchlist = excluded.watchlist,
			computed_at = excluded.computed_at`,
		rec.PaperID, rec.Score.Global, c.Recency, c.Code, c.Stars, c.Watchlist, formatTime(rec.ComputedAt))
	if err != nil {
		return fmt.Errorf("upserting score for %s: %w", rec.PaperID, err)
	}
	return nil
}

// Score returns the stored score of a paper, or nil.
func (s *Store) Score(ctx context.Context, paperID string) (*types.ScoreRecord, error) {
	var (
		rec        types.ScoreRecord
		computedAt string
	)
	c := &rec.Score.Components
	err := s.db.QueryRowContext(ctx, `SELECT paper_id, global_score, recency, code, stars, watchlist, computed_at
		FROM scores WHERE paper_id = ?`, paperID).
		Scan(&rec.PaperID, &rec.Score.Global, &c.Recency, &c.Code, &c.Stars, &c.Watchlist, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading score of %s: %w", paperID, err)
	}
	if rec.ComputedAt, err = parseTime(computedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
