// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// UpsertOutcome reports what UpsertPaper did.
type UpsertOutcome int

const (
	Unchanged UpsertOutcome = iota
	Inserted
	Updated
)

func (o UpsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

const paperColumns = `id, arxiv_id, title, abstract, authors, categories, primary_category, published_at, updated_at, links`

// UpsertPaper inserts p, or overwrites the stored metadata when p.UpdatedAt
// is newer than the stored one. p.ID is set to the stored id. Timestamps
// are truncated to milliseconds.
func (s *Store) UpsertPaper(ctx context.Context, p *types.Paper) (UpsertOutcome, error) {
	p.PublishedAt = p.PublishedAt.UTC().Truncate(time.Millisecond)
	p.UpdatedAt = p.UpdatedAt.UTC().Truncate(time.Millisecond)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Unchanged, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id, updated string
	err = tx.QueryRowContext(ctx, `SELECT id, updated_at FROM papers WHERE arxiv_id = ?`, p.ArxivID).Scan(&id, &updated)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO papers (`+paperColumns+`, ingested_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ArxivID, p.Title, p.Abstract, toJSON(p.Authors), toJSON(p.Categories),
			p.PrimaryCategory, formatTime(p.PublishedAt), formatTime(p.UpdatedAt), toJSON(p.Links),
			formatTime(s.now()))
		if err != nil {
			if isUniqueViolation(err) {
				return Unchanged, fmt.Errorf("inserting paper %s: %w", p.ArxivID, ErrConflict)
			}
			return Unchanged, fmt.Errorf("inserting paper %s: %w", p.ArxivID, err)
		}
		return Inserted, tx.Commit()
	case err != nil:
		return Unchanged, fmt.Errorf("looking up paper %s: %w", p.ArxivID, err)
	}

	p.ID = id
	if formatTime(p.UpdatedAt) <= updated {
		return Unchanged, nil
	}
	_, err = tx.ExecContext(ctx, `UPDATE papers SET title = ?, abstract = ?, authors = ?, categories = ?,
		primary_category = ?, published_at = ?, updated_at = ?, links = ? WHERE id = ?`,
		p.Title, p.Abstract, toJSON(p.Authors), toJSON(p.Categories), p.PrimaryCategory,
		formatTime(p.PublishedAt), formatTime(p.UpdatedAt), toJSON(p.Links), id)
	if err != nil {
		return Unchanged, fmt.Errorf("updating paper %s: %w", p.ArxivID, err)
	}
	return Updated, tx.Commit()
}

// PaperByArxivID returns the paper with canonical id arxivID.
func (s *Store) PaperByArxivID(ctx context.Context, arxivID string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE arxiv_id = ?`, arxivID)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("paper %s: %w", arxivID, ErrNotFound)
	}
	return p, err
}

// PaperByID returns the paper with internal id id.
func (s *Store) PaperByID(ctx context.Context, id string) (types.Paper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Paper{}, fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return p, err
}

// PapersByArxivIDs returns the known papers among ids, in the order of ids.
// Unknown ids are skipped.
func (s *Store) PapersByArxivIDs(ctx context.Context, ids []string) ([]types.Paper, error) {
	papers := []types.Paper{}
	for _, id := range ids {
		p, err := s.PaperByArxivID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// RecentQuery selects the newest papers.
type RecentQuery struct {
	// Limit caps the result after filtering.
	Limit int

	// Since excludes papers published before it. Zero means no bound.
	Since time.Time

	// OnlyMissing keeps papers that have no enrichment record yet.
	OnlyMissing bool
}

// RecentPapers returns papers by publish time, newest first.
func (s *Store) RecentPapers(ctx context.Context, q RecentQuery) ([]types.Paper, error) {
	var (
		where []string
		args  []any
	)
	if !q.Since.IsZero() {
		where = append(where, `published_at >= ?`)
		args = append(args, formatTime(q.Since))
	}
	if q.OnlyMissing {
		where = append(where, `NOT EXISTS (SELECT 1 FROM enrichments e WHERE e.paper_id = papers.id)`)
	}

	query := `SELECT ` + paperColumns + ` FROM papers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY published_at DESC, id DESC LIMIT ?`
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recent papers: %w", err)
	}
	defer rows.Close()

	papers := []types.Paper{}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// DeletePaper removes a paper and, by cascade, everything derived from it.
func (s *Store) DeletePaper(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting paper %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("paper %s: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(sc scanner) (types.Paper, error) {
	var (
		p                          types.Paper
		authors, categories, links sql.NullString
		published, updated         string
	)
	if err := sc.Scan(&p.ID, &p.ArxivID, &p.Title, &p.Abstract, &authors, &categories,
		&p.PrimaryCategory, &published, &updated, &links); err != nil {
		return types.Paper{}, err
	}
	var err error
	if p.Authors, err = fromJSON[string](authors); err != nil {
		return types.Paper{}, err
	}
	if p.Categories, err = fromJSON[string](categories); err != nil {
		return types.Paper{}, err
	}
	if p.Links, err = fromJSON[string](links); err != nil {
		return types.Paper{}, err
	}
	if p.PublishedAt, err = parseTime(published); err != nil {
		return types.Paper{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return types.Paper{}, err
	}
	return p, nil
}
