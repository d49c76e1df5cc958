// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest lists recent papers from the arXiv API and stores them as
// base paper records.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// DefaultCategories are listed when none are configured.
var DefaultCategories = []string{"cs.AI", "cs.CL", "cs.CV", "cs.LG"}

// Client lists papers from the arXiv API.
type Client struct {
	source *httputil.Source
	parser *gofeed.Parser
}

// NewClient creates a client limited to one request every three seconds.
func NewClient(opts ...httputil.SourceOption) *Client {
	opts = append([]httputil.SourceOption{httputil.WithRate(1.0/3, 1), httputil.WithTimeout(30 * time.Second)}, opts...)
	return &Client{
		source: httputil.NewSource("arxiv-api", opts...),
		parser: gofeed.NewParser(),
	}
}

// Recent returns up to max papers in categories, newest submission first.
func (c *Client) Recent(ctx context.Context, categories []string, max int) ([]types.Paper, error) {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	if max <= 0 {
		max = 100
	}

	var parts []string
	for _, cat := range categories {
		parts = append(parts, "cat:"+strings.TrimSpace(cat))
	}
	// The API expects unencoded +OR+ in the query, so build the URL by hand.
	reqURL := fmt.Sprintf("%s?search_query=%s&sortBy=submittedDate&sortOrder=descending&start=0&max_results=%d",
		arxivAPIBase, strings.Join(parts, "+OR+"), max)

	resp, err := c.source.Get(ctx, reqURL, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &httputil.StatusError{Source: c.source.Name(), StatusCode: resp.StatusCode}
	}

	feed, err := c.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	papers := make([]types.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		p, ok := paperFromItem(item)
		if ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

// paperFromItem converts one Atom entry. Entries without a parseable id are
// skipped.
func paperFromItem(item *gofeed.Item) (types.Paper, bool) {
	id, err := arxivid.Canonical(item.GUID)
	if err != nil {
		return types.Paper{}, false
	}

	p := types.Paper{
		ArxivID:    id,
		Title:      collapse(item.Title),
		Abstract:   collapse(item.Description),
		Authors:    []string{},
		Categories: []string{},
		Links:      []string{},
	}
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			p.Authors = append(p.Authors, collapse(a.Name))
		}
	}
	seen := make(map[string]bool)
	for _, cat := range item.Categories {
		cat = strings.TrimSpace(cat)
		if cat != "" && !seen[cat] {
			seen[cat] = true
			p.Categories = append(p.Categories, cat)
		}
	}
	p.PrimaryCategory = primaryCategory(item)
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	for _, l := range item.Links {
		if l != "" {
			p.Links = append(p.Links, l)
		}
	}
	if item.PublishedParsed != nil {
		p.PublishedAt = item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		p.UpdatedAt = item.UpdatedParsed.UTC()
	} else {
		p.UpdatedAt = p.PublishedAt
	}
	return p, true
}

// primaryCategory reads the arxiv:primary_category extension element.
func primaryCategory(item *gofeed.Item) string {
	for _, ext := range item.Extensions["arxiv"]["primary_category"] {
		if term := strings.TrimSpace(ext.Attrs["term"]); term != "" {
			return term
		}
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PaperStore is the persistence the ingest run needs.
type PaperStore interface {
	UpsertPaper(ctx context.Context, p *types.Paper) (store.UpsertOutcome, error)
}

// Lister returns recent papers for categories.
type Lister interface {
	Recent(ctx context.Context, categories []string, max int) ([]types.Paper, error)
}

// Summary counts the outcome of one ingest run.
type Summary struct {
	Listed    int `json:"listed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Run lists recent papers and upserts each one. A failed upsert is logged
// and counted; it does not stop the run.
func Run(ctx context.Context, l Lister, st PaperStore, categories []string, max int, log zerolog.Logger) (Summary, error) {
	papers, err := l.Recent(ctx, categories, max)
	if err != nil {
		return Summary{}, fmt.Errorf("listing papers: %w", err)
	}

	sum := Summary{Listed: len(papers)}
	for i := range papers {
		p := &papers[i]
		outcome, err := st.UpsertPaper(ctx, p)
		if err != nil {
			log.Warn().Err(err).Str("arxiv_id", p.ArxivID).Msg("storing paper failed")
			sum.Failed++
			continue
		}
		switch outcome {
		case store.Inserted:
			sum.Inserted++
		case store.Updated:
			sum.Updated++
		default:
			sum.Unchanged++
		}
		log.Debug().Str("arxiv_id", p.ArxivID).Str("outcome", outcome.String()).Msg("ingested")
	}
	return sum, nil
}
