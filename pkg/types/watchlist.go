// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// WatchlistType selects how a watchlist's terms are matched against a paper.
type WatchlistType string

const (
	WatchKeyword     WatchlistType = "keyword"
	WatchAuthor      WatchlistType = "author"
	WatchBenchmark   WatchlistType = "benchmark"
	WatchInstitution WatchlistType = "institution"
)

// Valid reports whether t is one of the known watchlist types.
func (t WatchlistType) Valid() bool {
	switch t {
	case WatchKeyword, WatchAuthor, WatchBenchmark, WatchInstitution:
		return true
	}
	return false
}

// Watchlist is a user-owned list of terms that boosts matching papers.
type Watchlist struct {
	ID     string        `json:"id" yaml:"id"`
	UserID string        `json:"-" yaml:"user_id,omitempty"`
	Type   WatchlistType `json:"type" yaml:"type" validate:"required,oneof=keyword author benchmark institution"`
	Name   string        `json:"name" yaml:"name" validate:"required,max=120"`
	Terms  []string      `json:"terms" yaml:"terms" validate:"required,min=1,max=100,dive,required,max=200"`

	// Categories restricts the watchlist to papers in at least one of these
	// arXiv categories. Empty means unrestricted.
	Categories []string  `json:"categories" yaml:"categories" validate:"max=50,dive,required"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}
