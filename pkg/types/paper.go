// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records shared across the paper-radar pipeline:
// base papers, the append-only records derived from external sources, scores,
// watchlists, and the shapes returned by the feed and the enrichment batch.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Paper is the base record for an ingested arXiv paper.
type Paper struct {
	// ID is the internal identifier that every derived record references.
	ID string `json:"id" yaml:"id"`

	// ArxivID is the canonical, version-stripped arXiv identifier (e.g. "2301.07041").
	ArxivID string `json:"arxivId" yaml:"arxiv_id"`

	Title    string   `json:"title" yaml:"title"`
	Abstract string   `json:"abstract" yaml:"abstract"`
	Authors  []string `json:"authors" yaml:"authors"`

	// Categories is the set of arXiv categories, primary category included.
	Categories      []string `json:"categories" yaml:"categories"`
	PrimaryCategory string   `json:"primaryCategory" yaml:"primary_category"`

	PublishedAt time.Time `json:"publishedAt" yaml:"published_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`

	// Links are the external URLs listed by the mirror (abs page, PDF, DOI).
	Links []string `json:"links" yaml:"links"`
}

// EnrichmentRecord holds the code-host signals found for a paper in one
// enrichment run. Rows are append-only; readers take the latest per paper.
type EnrichmentRecord struct {
	ID      string `json:"id" yaml:"id"`
	PaperID string `json:"paperId" yaml:"paper_id"`

	// CodeURLs is the deduplicated union of scraped and extracted code links.
	CodeURLs []string `json:"codeUrls" yaml:"code_urls"`

	// PrimaryRepo is "owner/repo" for the first parseable code link, or empty.
	PrimaryRepo string `json:"primaryRepo,omitempty" yaml:"primary_repo,omitempty"`

	// Stars, License and HasWeights are nil when their source was unavailable.
	Stars      *int    `json:"stars" yaml:"stars"`
	License    *string `json:"license" yaml:"license"`
	HasWeights *bool   `json:"hasWeights" yaml:"has_weights"`

	ReadmeExcerpt string `json:"readmeExcerpt,omitempty" yaml:"readme_excerpt,omitempty"`
	ReadmeHash    string `json:"readmeHash,omitempty" yaml:"readme_hash,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// SOTAClaim is a state-of-the-art claim stated explicitly in a paper.
type SOTAClaim struct {
	Benchmark string  `json:"benchmark" yaml:"benchmark"`
	Metric    *string `json:"metric,omitempty" yaml:"metric,omitempty"`
	Value     *string `json:"value,omitempty" yaml:"value,omitempty"`
	Split     *string `json:"split,omitempty" yaml:"split,omitempty"`
}

// UnmarshalJSON accepts value as a string or as a bare JSON number, which
// is kept in its literal form ("63.1", "1e-3").
func (c *SOTAClaim) UnmarshalJSON(data []byte) error {
	type plain SOTAClaim
	var raw struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = SOTAClaim(raw.plain)

	v := bytes.TrimSpace(raw.Value)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		c.Value = nil
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fmt.Errorf("sota claim value: %w", err)
		}
		c.Value = &s
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return fmt.Errorf("sota claim value must be a string or number: %w", err)
		}
		s := n.String()
		c.Value = &s
	}
	return nil
}

// StructuredExtraction holds the fields the language model found in a
// paper's title and abstract. Append-only, latest wins.
type StructuredExtraction struct {
	ID         string      `json:"id" yaml:"id"`
	PaperID    string      `json:"paperId" yaml:"paper_id"`
	Method     *string     `json:"method" yaml:"method"`
	Tasks      []string    `json:"tasks" yaml:"tasks"`
	Datasets   []string    `json:"datasets" yaml:"datasets"`
	Benchmarks []string    `json:"benchmarks" yaml:"benchmarks"`
	SOTAClaims []SOTAClaim `json:"sotaClaims" yaml:"sota_claims"`
	CodeURLs   []string    `json:"codeUrls" yaml:"code_urls"`
	CreatedAt  time.Time   `json:"createdAt" yaml:"created_at"`
}

// LeaderboardLink points at a leaderboard the paper appears on.
type LeaderboardLink struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// BenchmarkMapping is the leaderboard service's view of a paper.
type BenchmarkMapping struct {
	ID        string `json:"id" yaml:"id"`
	PaperID   string `json:"paperId" yaml:"paper_id"`
	Found     bool   `json:"found" yaml:"found"`
	PaperURL  string `json:"paperUrl,omitempty" yaml:"paper_url,omitempty"`
	RepoURL   string `json:"repoUrl,omitempty" yaml:"repo_url,omitempty"`
	RepoStars *int   `json:"repoStars" yaml:"repo_stars"`

	// SearchURL is derived from the arXiv id alone, so it is present even
	// when the lookup failed.
	SearchURL    string            `json:"searchUrl" yaml:"search_url"`
	Leaderboards []LeaderboardLink `json:"leaderboards" yaml:"leaderboards"`

	// Fingerprint hashes the mapping content; (PaperID, Fingerprint) is unique.
	Fingerprint string    `json:"-" yaml:"-"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
}
