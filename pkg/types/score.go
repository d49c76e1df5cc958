// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScoreComponents are the four named inputs of the global score, each in [0,1].
type ScoreComponents struct {
	Recency   float64 `json:"recency" yaml:"recency"`
	Code      float64 `json:"code" yaml:"code"`
	Stars     float64 `json:"stars" yaml:"stars"`
	Watchlist float64 `json:"watchlist" yaml:"watchlist"`
}

// Score is a global score together with its components. Responses never
// carry the global number alone.
type Score struct {
	Global     float64         `json:"global" yaml:"global"`
	Components ScoreComponents `json:"components" yaml:"components"`
}

// ScoreRecord is the stored, non-personalized score of a paper. There is
// one row per paper, overwritten on every recompute.
type ScoreRecord struct {
	PaperID    string    `json:"paperId" yaml:"paper_id"`
	Score      Score     `json:"score" yaml:"score"`
	ComputedAt time.Time `json:"computedAt" yaml:"computed_at"`
}
