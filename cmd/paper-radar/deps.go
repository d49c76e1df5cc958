// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-radar/internal/benchmark"
	"github.com/pdiddy/paper-radar/internal/codehost"
	"github.com/pdiddy/paper-radar/internal/enrich"
	"github.com/pdiddy/paper-radar/internal/extract"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/internal/logging"
	"github.com/pdiddy/paper-radar/internal/metrics"
	"github.com/pdiddy/paper-radar/internal/mirror"
	"github.com/pdiddy/paper-radar/internal/secrets"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

func sourceOptions() []httputil.SourceOption {
	return []httputil.SourceOption{
		httputil.WithTimeout(cfg.Enrich.Timeout),
		httputil.WithUserAgent(cfg.Enrich.UserAgent),
	}
}

// newOrchestrator wires every adapter into an enrichment orchestrator.
// Explicit flags override the configured ones.
func newOrchestrator(st *store.Store, flags types.EnrichFlags, concurrency int, m *metrics.Metrics) *enrich.Orchestrator {
	opts := sourceOptions()

	githubToken := cfg.Enrich.GitHubToken
	if githubToken == "" {
		githubToken = secrets.Lookup(loadedSecrets, secrets.GitHubToken)
	}

	deps := enrich.Deps{
		Store:      st,
		Links:      mirror.NewScraper(opts...),
		Repos:      codehost.NewClient(githubToken, opts...),
		Benchmarks: benchmark.NewClient(opts...),
		Metrics:    m,
		Logger:     logging.Component("enrich"),
	}
	if flags.Extract {
		apiKey := cfg.Enrich.AI.APIKey
		if apiKey == "" {
			apiKey = secrets.Lookup(loadedSecrets, secrets.AnthropicAPIKey)
		}
		deps.Extractor = extract.NewClaudeBackend(apiKey, cfg.Enrich.AI.Model,
			httputil.WithTimeout(cfg.Enrich.AI.Timeout), httputil.WithUserAgent(cfg.Enrich.UserAgent))
	}

	return enrich.New(deps, enrich.Config{
		Flags:       flags,
		Concurrency: concurrency,
		Scoring:     cfg.Scoring,
	})
}

func newAssembler(st *store.Store, m *metrics.Metrics) (*feed.Assembler, error) {
	loc, err := location(cfg.Feed)
	if err != nil {
		return nil, err
	}
	return feed.New(st, cfg.Scoring,
		feed.WithLocation(loc),
		feed.WithDefaultLimit(cfg.Feed.DefaultLimit),
		feed.WithMetrics(m),
	), nil
}

func configuredFlags() types.EnrichFlags {
	return types.EnrichFlags{
		Extract:         cfg.Enrich.Extract,
		Readme:          cfg.Enrich.Readme,
		BenchmarkLookup: cfg.Enrich.BenchmarkLookup,
	}
}

// writeOutput encodes v as indented JSON or as YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
