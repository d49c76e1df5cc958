// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Key is a position in feed order: publish time descending, then paper id
// descending.
type Key struct {
	PublishedAt time.Time
	ID          string
}

// FeedFilter selects feed rows.
type FeedFilter struct {
	// From and To bound the publish time, inclusive. Zero means unbounded.
	From, To time.Time

	// Categories keeps papers in at least one of them. Empty keeps all.
	Categories []string

	CodeOnly       bool
	HasWeights     bool
	WithBenchmarks bool

	// After keeps rows strictly after the key in feed order.
	After *Key

	Limit int
}

// FeedRow is a paper joined with its latest derived records and stored score.
type FeedRow struct {
	Paper        types.Paper
	CodeURLs     []string
	PrimaryRepo  string
	Stars        *int
	HasWeights   *bool
	Benchmarks   []string
	Leaderboards []types.LeaderboardLink

	// Score is nil when the paper has never been scored.
	Score *types.Score
}

// FeedRows returns up to f.Limit rows in feed order.
func (s *Store) FeedRows(ctx context.Context, f FeedFilter) ([]FeedRow, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, `p.published_at >= ?`)
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, `p.published_at <= ?`)
		args = append(args, formatTime(f.To))
	}
	if len(f.Categories) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM json_each(p.categories) c WHERE c.value IN (?`+
			strings.Repeat(`, ?`, len(f.Categories)-1)+`))`)
		for _, c := range f.Categories {
			args = append(args, c)
		}
	}
	if f.CodeOnly {
		where = append(where, `json_array_length(COALESCE(e.code_urls, '[]')) > 0`)
	}
	if f.HasWeights {
		where = append(where, `e.has_weights = 1`)
	}
	if f.WithBenchmarks {
		where = append(where, `(json_array_length(COALESCE(x.benchmarks, '[]')) > 0
			OR json_array_length(COALESCE(b.leaderboards, '[]')) > 0)`)
	}
	if f.After != nil {
		ts := formatTime(f.After.PublishedAt)
		where = append(where, `(p.published_at < ? OR (p.published_at = ? AND p.id < ?))`)
		args = append(args, ts, ts, f.After.ID)
	}

	query := `SELECT p.id, p.arxiv_id, p.title, p.abstract, p.authors, p.categories, p.primary_category,
			p.published_at, p.updated_at, p.links,
			e.code_urls, e.primary_repo, e.stars, e.has_weights,
			x.benchmarks, b.leaderboards,
			sc.global_score, sc.recency, sc.code, sc.stars, sc.watchlist
		FROM papers p
		LEFT JOIN latest_enrichments e ON e.paper_id = p.id
		LEFT JOIN latest_extractions x ON x.paper_id = p.id
		LEFT JOIN latest_benchmark_mappings b ON b.paper_id = p.id
		LEFT JOIN scores sc ON sc.paper_id = p.id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY p.published_at DESC, p.id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	out := []FeedRow{}
	for rows.Next() {
		r, err := scanFeedRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanFeedRow(rows *sql.Rows) (FeedRow, error) {
	var (
		r                                     FeedRow
		authors, categories, links            sql.NullString
		published, updated                    string
		codeURLs, primaryRepo                 sql.NullString
		stars                                 sql.NullInt64
		hasWeights                            sql.NullBool
		benchmarks, leaderboards              sql.NullString
		global, recency, code, starsC, watchC sql.NullFloat64
	)
	p := &r.Paper
	if err := rows.Scan(&p.ID, &p.ArxivID, &p.Title, &p.Abstract, &authors, &categories, &p.PrimaryCategory,
		&published, &updated, &links,
		&codeURLs, &primaryRepo, &stars, &hasWeights,
		&benchmarks, &leaderboards,
		&global, &recency, &code, &starsC, &watchC); err != nil {
		return FeedRow{}, fmt.Errorf("scanning feed row: %w", err)
	}

	var err error
	if p.Authors, err = fromJSON[string](authors); err != nil {
		return FeedRow{}, err
	}
	if p.Categories, err = fromJSON[string](categories); err != nil {
		return FeedRow{}, err
	}
	if p.Links, err = fromJSON[string](links); err != nil {
		return FeedRow{}, err
	}
	if p.PublishedAt, err = parseTime(published); err != nil {
		return FeedRow{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return FeedRow{}, err
	}
	if r.CodeURLs, err = fromJSON[string](codeURLs); err != nil {
		return FeedRow{}, err
	}
	if r.Benchmarks, err = fromJSON[string](benchmarks); err != nil {
		return FeedRow{}, err
	}
	if r.Leaderboards, err = fromJSON[types.LeaderboardLink](leaderboards); err != nil {
		return FeedRow{}, err
	}
	r.PrimaryRepo = primaryRepo.String
	r.Stars = intPtr(stars)
	r.HasWeights = boolPtr(hasWeights)
	if global.Valid {
		r.Score = &types.Score{
			Global: global.Float64,
			Components: types.ScoreComponents{
				Recency:   recency.Float64,
				Code:      code.Float64,
				Stars:     starsC.Float64,
				Watchlist: watchC.Float64,
			},
		}
	}
	return r, nil
}
