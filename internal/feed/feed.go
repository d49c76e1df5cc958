// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed assembles cursor-paginated feed pages from the store.
//
// Rows come back in keyset order (publish time descending, then paper id
// descending) and the cursor always points at the last row of a page in
// that order. The for-you view then re-ranks the page itself: live with the
// user's watchlists when there are any, otherwise by the stored score. The
// re-rank never moves rows across pages, so walking the cursor still visits
// every matching paper exactly once.
package feed

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/pdiddy/paper-radar/internal/metrics"
	"github.com/pdiddy/paper-radar/internal/score"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// ErrInvalidQuery is wrapped by every validation failure (bad view, bad
// cursor). Callers map it to a client error.
var ErrInvalidQuery = errors.New("invalid feed query")

// Page size bounds.
const (
	DefaultLimit = 25
	MaxLimit     = 50
)

// Query selects one feed page.
type Query struct {
	View           types.FeedView
	Categories     []string
	CodeOnly       bool
	HasWeights     bool
	WithBenchmarks bool

	// UserID owns the watchlists used by the for-you view. Empty means
	// anonymous.
	UserID string

	Cursor string
	Limit  int
}

// Store is the read side the assembler needs.
type Store interface {
	FeedRows(ctx context.Context, f store.FeedFilter) ([]store.FeedRow, error)
	Watchlists(ctx context.Context, userID string) ([]types.Watchlist, error)
}

// Assembler builds feed pages.
type Assembler struct {
	store        Store
	scoring      types.ScoringConfig
	loc          *time.Location
	now          func() time.Time
	metrics      *metrics.Metrics
	defaultLimit int
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLocation sets the time zone whose midnight starts the today view.
func WithLocation(loc *time.Location) Option {
	return func(a *Assembler) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithDefaultLimit sets the page size used when a query has none.
func WithDefaultLimit(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.defaultLimit = ClampLimit(n)
		}
	}
}

// WithMetrics records feed requests.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assembler) { a.metrics = m }
}

// New creates an Assembler that scores with cfg.
func New(st Store, cfg types.ScoringConfig, opts ...Option) *Assembler {
	a := &Assembler{store: st, scoring: cfg, loc: time.Local, now: time.Now, defaultLimit: DefaultLimit}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ParseView validates a view name. Empty selects today.
func ParseView(s string) (types.FeedView, error) {
	switch v := types.FeedView(s); v {
	case "":
		return types.ViewToday, nil
	case types.ViewToday, types.ViewWeek, types.ViewForYou:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown view %q", ErrInvalidQuery, s)
}

// ClampLimit forces n into [1, MaxLimit]; 0 means DefaultLimit.
func ClampLimit(n int) int {
	if n == 0 {
		return DefaultLimit
	}
	return min(max(n, 1), MaxLimit)
}

// Page returns one page of q.
func (a *Assembler) Page(ctx context.Context, q Query) (types.FeedPage, error) {
	start := time.Now()
	view, err := ParseView(string(q.View))
	if err != nil {
		return types.FeedPage{}, err
	}
	limit := a.defaultLimit
	if q.Limit != 0 {
		limit = ClampLimit(q.Limit)
	}

	f := store.FeedFilter{
		Categories:     q.Categories,
		CodeOnly:       q.CodeOnly,
		HasWeights:     q.HasWeights,
		WithBenchmarks: q.WithBenchmarks,
		Limit:          limit + 1,
	}
	now := a.now()
	switch view {
	case types.ViewToday:
		local := now.In(a.loc)
		f.From = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.loc)
		f.To = now
	case types.ViewWeek:
		f.From = now.Add(-7 * 24 * time.Hour)
		f.To = now
	}
	if q.Cursor != "" {
		k, err := DecodeCursor(q.Cursor)
		if err != nil {
			return types.FeedPage{}, err
		}
		f.After = &k
	}

	rows, err := a.store.FeedRows(ctx, f)
	if err != nil {
		return types.FeedPage{}, err
	}

	page := types.FeedPage{Items: []types.PaperSummary{}}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1].Paper
		c := EncodeCursor(store.Key{PublishedAt: last.PublishedAt, ID: last.ID})
		page.NextCursor = &c
	}

	if view == types.ViewForYou {
		if err := a.rerank(ctx, rows, q.UserID, now); err != nil {
			return types.FeedPage{}, err
		}
	}
	for _, r := range rows {
		page.Items = append(page.Items, summarize(r))
	}

	a.metrics.ObserveFeedRequest(string(view), time.Since(start).Seconds())
	return page, nil
}

// rerank sorts rows for the for-you view. With watchlists every row is
// rescored live and carries the live score; without, rows are ordered by
// their stored score and unscored rows sink. Ties keep keyset order.
func (a *Assembler) rerank(ctx context.Context, rows []store.FeedRow, userID string, now time.Time) error {
	var ws []types.Watchlist
	if userID != "" {
		var err error
		if ws, err = a.store.Watchlists(ctx, userID); err != nil {
			return err
		}
	}
	if len(ws) > 0 {
		for i := range rows {
			s := score.Compute(rows[i].Paper, signalsOf(rows[i]), ws, a.scoring, now)
			rows[i].Score = &s
		}
	}
	slices.SortStableFunc(rows, func(x, y store.FeedRow) int {
		return cmp.Compare(globalOf(y), globalOf(x))
	})
	return nil
}

func globalOf(r store.FeedRow) float64 {
	if r.Score == nil {
		return -1
	}
	return r.Score.Global
}

func signalsOf(r store.FeedRow) score.Signals {
	return score.Signals{
		CodeURLs:   r.CodeURLs,
		HasWeights: r.HasWeights,
		Stars:      r.Stars,
		Benchmarks: r.Benchmarks,
	}
}

func summarize(r store.FeedRow) types.PaperSummary {
	p := r.Paper
	return types.PaperSummary{
		ID:              p.ID,
		ArxivID:         p.ArxivID,
		Title:           p.Title,
		Authors:         p.Authors,
		Categories:      p.Categories,
		PrimaryCategory: p.PrimaryCategory,
		PublishedAt:     p.PublishedAt,
		CodeURLs:        r.CodeURLs,
		PrimaryRepo:     r.PrimaryRepo,
		Stars:           r.Stars,
		HasWeights:      r.HasWeights,
		Benchmarks:      r.Benchmarks,
		Leaderboards:    r.Leaderboards,
		Score:           r.Score,
	}
}
