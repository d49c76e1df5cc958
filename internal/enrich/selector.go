// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// Selection bounds.
const (
	DefaultLimit    = 25
	MaxLimit        = 200
	MaxLookbackDays = 60
)

// Selection picks the papers an enrichment run processes. When IDs is
// non-empty the explicit list is used and the window fields are ignored.
type Selection struct {
	IDs          []string
	Limit        int
	LookbackDays int

	// OnlyMissing restricts window mode to papers that were never enriched.
	OnlyMissing bool
}

// ClampSelection forces Limit into [1, MaxLimit] (0 means DefaultLimit) and
// LookbackDays into [0, MaxLookbackDays].
func ClampSelection(s Selection) Selection {
	switch {
	case s.Limit == 0:
		s.Limit = DefaultLimit
	case s.Limit < 1:
		s.Limit = 1
	case s.Limit > MaxLimit:
		s.Limit = MaxLimit
	}
	s.LookbackDays = min(max(s.LookbackDays, 0), MaxLookbackDays)
	return s
}

// CandidateStore is the read side the selector needs.
type CandidateStore interface {
	PapersByArxivIDs(ctx context.Context, ids []string) ([]types.Paper, error)
	RecentPapers(ctx context.Context, q store.RecentQuery) ([]types.Paper, error)
}

// SelectCandidates returns the papers to enrich, in processing order.
// Explicit ids are version-stripped and deduplicated; unknown ids are
// skipped. Window mode returns up to Limit papers, newest first, published
// within LookbackDays of now (0 disables the time filter). An empty result
// is not an error.
func SelectCandidates(ctx context.Context, st CandidateStore, sel Selection, now time.Time) ([]types.Paper, error) {
	if len(sel.IDs) > 0 {
		ids := make([]string, 0, len(sel.IDs))
		for _, id := range sel.IDs {
			if id = arxivid.StripVersion(id); id != "" {
				ids = append(ids, id)
			}
		}
		papers, err := st.PapersByArxivIDs(ctx, arxivid.Dedupe(ids))
		if err != nil {
			return nil, fmt.Errorf("looking up candidates: %w", err)
		}
		return papers, nil
	}

	sel = ClampSelection(sel)
	q := store.RecentQuery{Limit: sel.Limit, OnlyMissing: sel.OnlyMissing}
	if sel.LookbackDays > 0 {
		q.Since = now.Add(-time.Duration(sel.LookbackDays) * 24 * time.Hour)
	}
	papers, err := st.RecentPapers(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("selecting recent papers: %w", err)
	}
	return papers, nil
}
