// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package benchmark maps papers to leaderboards using the Papers with Code
// API.
package benchmark

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// Package-level vars for test substitution.
var (
	apiBaseURL  = "https://paperswithcode.com/api/v1"
	siteBaseURL = "https://paperswithcode.com"
)

// maxLeaderboards caps the leaderboard links kept per paper.
const maxLeaderboards = 10

// Client queries the leaderboard service.
type Client struct {
	source *httputil.Source
}

// NewClient creates a client.
func NewClient(opts ...httputil.SourceOption) *Client {
	opts = append([]httputil.SourceOption{httputil.WithRate(1, 1)}, opts...)
	return &Client{source: httputil.NewSource("paperswithcode", opts...)}
}

type paperList struct {
	Count   int `json:"count"`
	Results []struct {
		ID      string `json:"id"`
		ArxivID string `json:"arxiv_id"`
	} `json:"results"`
}

type repoList struct {
	Results []struct {
		URL        string `json:"url"`
		Stars      int    `json:"stars"`
		IsOfficial bool   `json:"is_official"`
	} `json:"results"`
}

type resultList struct {
	Results []struct {
		Task    string `json:"task"`
		Dataset string `json:"dataset"`
	} `json:"results"`
}

// Lookup maps arxivID to the service's paper page, its repository and the
// leaderboards it appears on. A paper the service does not know yields a
// mapping with Found false and a nil error.
func (c *Client) Lookup(ctx context.Context, arxivID string) (types.BenchmarkMapping, error) {
	m := NotFound(arxivID)

	var papers paperList
	if err := c.getJSON(ctx, "/papers/?arxiv_id="+url.QueryEscape(arxivID), &papers); err != nil {
		return types.BenchmarkMapping{}, err
	}
	if len(papers.Results) == 0 {
		return m, nil
	}
	pid := papers.Results[0].ID
	m.Found = true
	m.PaperURL = siteBaseURL + "/paper/" + pid

	var repos repoList
	if err := c.getJSON(ctx, "/papers/"+url.PathEscape(pid)+"/repositories/", &repos); err != nil {
		return types.BenchmarkMapping{}, err
	}
	for _, r := range repos.Results {
		if m.RepoURL == "" || r.IsOfficial {
			stars := r.Stars
			m.RepoURL = r.URL
			m.RepoStars = &stars
		}
		if r.IsOfficial {
			break
		}
	}

	var results resultList
	if err := c.getJSON(ctx, "/papers/"+url.PathEscape(pid)+"/results/", &results); err != nil {
		return types.BenchmarkMapping{}, err
	}
	seen := make(map[string]bool)
	for _, r := range results.Results {
		if r.Task == "" || r.Dataset == "" {
			continue
		}
		label := r.Task + " on " + r.Dataset
		link := siteBaseURL + "/sota/" + Slug(label)
		if seen[link] {
			continue
		}
		seen[link] = true
		m.Leaderboards = append(m.Leaderboards, types.LeaderboardLink{Label: label, URL: link})
		if len(m.Leaderboards) == maxLeaderboards {
			break
		}
	}

	m.Fingerprint = Fingerprint(m)
	return m, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.source.Get(ctx, apiBaseURL+path, nil)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &httputil.StatusError{Source: c.source.Name(), StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.source.Name(), err)
	}
	return nil
}

// NotFound is the mapping recorded when the service does not know the
// paper or could not be reached. It carries the deterministic search URL.
func NotFound(arxivID string) types.BenchmarkMapping {
	m := types.BenchmarkMapping{
		SearchURL:    SearchURL(arxivID),
		Leaderboards: []types.LeaderboardLink{},
	}
	m.Fingerprint = Fingerprint(m)
	return m
}

// SearchURL is the service's search page for an arXiv id.
func SearchURL(arxivID string) string {
	return siteBaseURL + "/search?q=arxiv:" + url.QueryEscape(arxivID)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and joins its alphanumeric runs with hyphens.
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Fingerprint hashes the content of a mapping, so a re-run that sees the
// same data produces the same value.
func Fingerprint(m types.BenchmarkMapping) string {
	h := sha256.New()
	fmt.Fprintf(h, "%t\x00%s\x00%s\x00%s\x00", m.Found, m.PaperURL, m.RepoURL, m.SearchURL)
	if m.RepoStars != nil {
		h.Write([]byte(strconv.Itoa(*m.RepoStars)))
	}
	for _, l := range m.Leaderboards {
		fmt.Fprintf(h, "\x00%s\x00%s", l.Label, l.URL)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
