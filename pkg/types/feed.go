// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// FeedView selects the time window and ranking of a feed query.
type FeedView string

const (
	ViewToday  FeedView = "today"
	ViewWeek   FeedView = "week"
	ViewForYou FeedView = "for-you"
)

// PaperSummary is one feed entry: the base paper joined with its latest
// derived records and a score.
type PaperSummary struct {
	ID              string    `json:"id" yaml:"id"`
	ArxivID         string    `json:"arxivId" yaml:"arxiv_id"`
	Title           string    `json:"title" yaml:"title"`
	Authors         []string  `json:"authors" yaml:"authors"`
	Categories      []string  `json:"categories" yaml:"categories"`
	PrimaryCategory string    `json:"primaryCategory" yaml:"primary_category"`
	PublishedAt     time.Time `json:"publishedAt" yaml:"published_at"`

	CodeURLs    []string `json:"codeUrls" yaml:"code_urls"`
	PrimaryRepo string   `json:"primaryRepo,omitempty" yaml:"primary_repo,omitempty"`
	Stars       *int     `json:"stars" yaml:"stars"`
	HasWeights  *bool    `json:"hasWeights" yaml:"has_weights"`
	Benchmarks  []string `json:"benchmarks" yaml:"benchmarks"`

	Leaderboards []LeaderboardLink `json:"leaderboards" yaml:"leaderboards"`

	// Score is nil when the paper has never been scored.
	Score *Score `json:"score" yaml:"score"`
}

// FeedPage is one page of a feed. NextCursor is nil once the feed is exhausted.
type FeedPage struct {
	Items      []PaperSummary `json:"items" yaml:"items"`
	NextCursor *string        `json:"nextCursor" yaml:"next_cursor"`
}

// PaperDetail is a paper with every latest derived record. Score is the
// requesting user's live score when they have watchlists, otherwise the
// stored one; it is nil for a paper that was never scored.
type PaperDetail struct {
	Paper      Paper                 `json:"paper" yaml:"paper"`
	Enrichment *EnrichmentRecord     `json:"enrichment" yaml:"enrichment"`
	Extraction *StructuredExtraction `json:"extraction" yaml:"extraction"`
	Mapping    *BenchmarkMapping     `json:"benchmarkMapping" yaml:"benchmark_mapping"`
	Score      *Score                `json:"score" yaml:"score"`
}
