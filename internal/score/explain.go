// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"time"

	"github.com/pdiddy/paper-radar/internal/watchlist"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// WatchMatch lists the terms of one watchlist that matched a paper.
type WatchMatch struct {
	WatchlistID string   `json:"watchlistId" yaml:"watchlist_id"`
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Terms       []string `json:"terms" yaml:"terms"`
}

// Explanation is a score together with the watchlist matches behind it.
type Explanation struct {
	Score   types.Score  `json:"score" yaml:"score"`
	Points  float64      `json:"points" yaml:"points"`
	Matches []WatchMatch `json:"matches" yaml:"matches"`
}

// Explain computes the score of p and reports which watchlist terms matched.
func Explain(p types.Paper, sig Signals, ws []types.Watchlist, cfg types.ScoringConfig, now time.Time) Explanation {
	subject := watchlist.SubjectOf(p, nil)
	subject.Benchmarks = sig.Benchmarks

	ex := Explanation{
		Score:   Compute(p, sig, ws, cfg, now),
		Points:  watchlist.Points(subject, ws, cfg.MatchWeights),
		Matches: []WatchMatch{},
	}
	for _, w := range ws {
		terms := watchlist.MatchedTerms(subject, w)
		if len(terms) == 0 {
			continue
		}
		ex.Matches = append(ex.Matches, WatchMatch{
			WatchlistID: w.ID,
			Name:        w.Name,
			Type:        string(w.Type),
			Terms:       terms,
		})
	}
	return ex
}
