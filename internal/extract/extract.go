// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract pulls structured fields out of a paper's title and
// abstract with a language model: the method name, tasks, datasets,
// benchmarks, state-of-the-art claims and code links. Only fields stated
// explicitly in the text are kept.
package extract

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// ErrMalformed is returned when the model's answer is not the expected JSON.
var ErrMalformed = errors.New("malformed extraction response")

// Extractor abstracts the model so tests and the orchestrator can supply a
// fake.
type Extractor interface {
	Extract(ctx context.Context, title, abstract string) (Result, error)
}

// Result holds the fields extracted from one paper.
type Result struct {
	Method     *string           `json:"method"`
	Tasks      []string          `json:"tasks"`
	Datasets   []string          `json:"datasets"`
	Benchmarks []string          `json:"benchmarks"`
	SOTAClaims []types.SOTAClaim `json:"sota_claims"`
	CodeURLs   []string          `json:"code_urls"`
}

// Normalize trims every field, drops empty values and case-insensitive
// duplicates, and drops claims that name no benchmark. Slices are never nil.
func Normalize(r Result) Result {
	out := Result{
		Method:     trimPtr(r.Method),
		Tasks:      dedupeFold(r.Tasks),
		Datasets:   dedupeFold(r.Datasets),
		Benchmarks: dedupeFold(r.Benchmarks),
		CodeURLs:   dedupeExact(r.CodeURLs),
		SOTAClaims: []types.SOTAClaim{},
	}
	for _, c := range r.SOTAClaims {
		c.Benchmark = strings.TrimSpace(c.Benchmark)
		if c.Benchmark == "" {
			continue
		}
		c.Metric = trimPtr(c.Metric)
		c.Value = trimPtr(c.Value)
		c.Split = trimPtr(c.Split)
		out.SOTAClaims = append(out.SOTAClaims, c)
	}
	return out
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}

func dedupeFold(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func dedupeExact(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
