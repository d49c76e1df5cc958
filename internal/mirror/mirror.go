// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mirror scrapes code links from a paper's abstract page on the
// arXiv mirror.
package mirror

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-radar/internal/httputil"
)

// absBaseURL is the abstract page root. Declared as a var so tests can
// substitute an httptest server.
var absBaseURL = "https://arxiv.org/abs/"

var githubLinkPattern = regexp.MustCompile(`^(?:https?:)?//(?:www\.)?github\.com/[^/\s]+/[^/\s]+`)

// trailingPunct is stripped from scraped links; it usually belongs to the
// surrounding sentence.
const trailingPunct = `.,;:)]}>'"`

// Scraper fetches abstract pages and collects repository links.
type Scraper struct {
	source *httputil.Source
}

// NewScraper creates a scraper. arXiv asks for no more than one request
// every few seconds, so the default rate is one per three seconds.
func NewScraper(opts ...httputil.SourceOption) *Scraper {
	opts = append([]httputil.SourceOption{httputil.WithRate(1.0/3, 1)}, opts...)
	return &Scraper{source: httputil.NewSource("arxiv-abs", opts...)}
}

// CodeLinks fetches the abstract page of arxivID and returns its GitHub
// links in page order, deduplicated.
func (s *Scraper) CodeLinks(ctx context.Context, arxivID string) ([]string, error) {
	resp, err := s.source.Get(ctx, absBaseURL+arxivID, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &httputil.StatusError{Source: s.source.Name(), StatusCode: resp.StatusCode}
	}
	return ExtractCodeLinks(bytes.NewReader(resp.Body))
}

// ExtractCodeLinks parses an HTML document and returns the href of every
// anchor that points at a GitHub repository. Protocol-relative links get an
// https scheme and trailing punctuation is removed. Exact duplicates are
// dropped, keeping the first occurrence.
func ExtractCodeLinks(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	links := []string{}
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := NormalizeLink(href)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	})
	return links, nil
}

// NormalizeLink returns href cleaned up when it is a GitHub repository
// link, or "" otherwise.
func NormalizeLink(href string) string {
	href = strings.TrimRight(strings.TrimSpace(href), trailingPunct)
	if !githubLinkPattern.MatchString(href) {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	return href
}
