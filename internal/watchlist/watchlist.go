// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watchlist matches papers against user-defined term lists.
//
// Matching is type-dependent. Keyword and institution terms match whole
// words of the title and abstract, case-insensitively. Author terms match an
// author name exactly after case folding and whitespace normalization.
// Benchmark terms match an extracted benchmark name exactly, or fall back to
// the keyword rule. A watchlist with categories only applies to papers that
// share at least one of them. The functions here are pure and safe for
// concurrent use.
package watchlist

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Subject is the part of a paper that watchlists look at.
type Subject struct {
	Title      string
	Abstract   string
	Authors    []string
	Categories []string
	Benchmarks []string
}

// SubjectOf builds a Subject from a paper and its latest extraction, which
// may be nil.
func SubjectOf(p types.Paper, ex *types.StructuredExtraction) Subject {
	s := Subject{
		Title:      p.Title,
		Abstract:   p.Abstract,
		Authors:    p.Authors,
		Categories: p.Categories,
	}
	if ex != nil {
		s.Benchmarks = ex.Benchmarks
	}
	return s
}

// DefaultWeights returns the points contributed by one matching term.
func DefaultWeights() types.MatchWeights {
	return types.MatchWeights{
		Keyword:     1.0,
		Author:      1.2,
		Benchmark:   1.1,
		Institution: 1.0,
	}
}

// Matches reports whether any term of w matches s.
func Matches(s Subject, w types.Watchlist) bool {
	return len(MatchedTerms(s, w)) > 0
}

// MatchedTerms returns the terms of w that match s, in watchlist order.
func MatchedTerms(s Subject, w types.Watchlist) []string {
	if len(w.Terms) == 0 || !inCategories(s, w.Categories) {
		return nil
	}
	text := s.Title + " " + s.Abstract

	var matched []string
	for _, term := range w.Terms {
		if matchTerm(s, text, w.Type, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// Points sums the weighted points of every matching term across ws.
func Points(s Subject, ws []types.Watchlist, weights types.MatchWeights) float64 {
	var points float64
	for _, w := range ws {
		n := len(MatchedTerms(s, w))
		if n == 0 {
			continue
		}
		points += float64(n) * weightFor(w.Type, weights)
	}
	return points
}

func weightFor(t types.WatchlistType, weights types.MatchWeights) float64 {
	switch t {
	case types.WatchKeyword:
		return weights.Keyword
	case types.WatchAuthor:
		return weights.Author
	case types.WatchBenchmark:
		return weights.Benchmark
	case types.WatchInstitution:
		return weights.Institution
	}
	return 0
}

// inCategories applies the category restriction. It only excludes when both
// the watchlist and the paper declare categories.
func inCategories(s Subject, restrict []string) bool {
	if len(restrict) == 0 || len(s.Categories) == 0 {
		return true
	}
	for _, c := range restrict {
		if slices.ContainsFunc(s.Categories, func(pc string) bool { return strings.EqualFold(pc, c) }) {
			return true
		}
	}
	return false
}

func matchTerm(s Subject, text string, t types.WatchlistType, term string) bool {
	norm := Normalize(term)
	if norm == "" {
		return false
	}
	switch t {
	case types.WatchKeyword, types.WatchInstitution:
		return containsWord(text, norm)
	case types.WatchAuthor:
		return slices.ContainsFunc(s.Authors, func(a string) bool { return Normalize(a) == norm })
	case types.WatchBenchmark:
		if slices.ContainsFunc(s.Benchmarks, func(b string) bool { return Normalize(b) == norm }) {
			return true
		}
		return containsWord(text, norm)
	}
	return false
}

// Normalize lowercases s and collapses runs of whitespace to one space.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// containsWord reports whether term occurs in text with no letter, digit or
// underscore directly on either side. Spaces inside term match any run of
// whitespace.
func containsWord(text, term string) bool {
	parts := strings.Split(term, " ")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + strings.Join(parts, `\s+`) + `(?:[^\p{L}\p{N}_]|$)`)
	return re.MatchString(text)
}
