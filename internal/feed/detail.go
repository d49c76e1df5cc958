// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"time"

	"github.com/pdiddy/paper-radar/internal/score"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// DetailStore is the read side of a single-paper lookup.
type DetailStore interface {
	PaperByArxivID(ctx context.Context, arxivID string) (types.Paper, error)
	LatestEnrichment(ctx context.Context, paperID string) (*types.EnrichmentRecord, error)
	LatestExtraction(ctx context.Context, paperID string) (*types.StructuredExtraction, error)
	LatestBenchmarkMapping(ctx context.Context, paperID string) (*types.BenchmarkMapping, error)
	Score(ctx context.Context, paperID string) (*types.ScoreRecord, error)
	Watchlists(ctx context.Context, userID string) ([]types.Watchlist, error)
}

// Detail loads a paper and its latest derived records. An unknown paper
// returns an error wrapping store.ErrNotFound.
func Detail(ctx context.Context, st DetailStore, arxivID, userID string, cfg types.ScoringConfig, now time.Time) (types.PaperDetail, error) {
	p, err := st.PaperByArxivID(ctx, arxivID)
	if err != nil {
		return types.PaperDetail{}, err
	}
	d := types.PaperDetail{Paper: p}
	if d.Enrichment, err = st.LatestEnrichment(ctx, p.ID); err != nil {
		return types.PaperDetail{}, err
	}
	if d.Extraction, err = st.LatestExtraction(ctx, p.ID); err != nil {
		return types.PaperDetail{}, err
	}
	if d.Mapping, err = st.LatestBenchmarkMapping(ctx, p.ID); err != nil {
		return types.PaperDetail{}, err
	}

	var ws []types.Watchlist
	if userID != "" {
		if ws, err = st.Watchlists(ctx, userID); err != nil {
			return types.PaperDetail{}, err
		}
	}
	if len(ws) > 0 {
		s := score.Compute(p, DetailSignals(d), ws, cfg, now)
		d.Score = &s
		return d, nil
	}

	rec, err := st.Score(ctx, p.ID)
	if err != nil {
		return types.PaperDetail{}, err
	}
	if rec != nil {
		d.Score = &rec.Score
	}
	return d, nil
}

// DetailSignals gathers the score inputs from a paper's latest records.
func DetailSignals(d types.PaperDetail) score.Signals {
	var sig score.Signals
	if d.Enrichment != nil {
		sig.CodeURLs = d.Enrichment.CodeURLs
		sig.HasWeights = d.Enrichment.HasWeights
		sig.Stars = d.Enrichment.Stars
	}
	if d.Extraction != nil {
		sig.Benchmarks = d.Extraction.Benchmarks
	}
	return sig
}

var _ DetailStore = (*store.Store)(nil)
