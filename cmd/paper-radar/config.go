// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-radar/internal/extract"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/internal/ingest"
	"github.com/pdiddy/paper-radar/internal/score"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// defaultConfig returns the configuration used when no file or environment
// variable overrides a key.
func defaultConfig() types.Config {
	return types.Config{
		DBPath:     "paper-radar.db",
		Categories: slices.Clone(ingest.DefaultCategories),
		Log:        types.LogConfig{Level: "info", Format: "console"},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   httputil.DefaultTimeout,
				UserAgent: httputil.DefaultUserAgent,
			},
			Readme:          true,
			BenchmarkLookup: true,
			Concurrency:     1,
			AI: types.AIConfig{
				Model:   extract.DefaultModel,
				Timeout: extract.DefaultTimeout,
			},
		},
		Scoring: score.DefaultConfig(),
		Feed:    types.FeedConfig{DefaultLimit: feed.DefaultLimit},
		Server:  types.ServerConfig{Addr: ":8080", RequestsPerMinute: 120},
	}
}

// setDefaults registers every key of cfg with viper so that environment
// variables such as PAPER_RADAR_ENRICH_CONCURRENCY are honored.
func setDefaults(v *viper.Viper, cfg types.Config) {
	defaults := map[string]any{
		"db_path":                           cfg.DBPath,
		"categories":                        cfg.Categories,
		"log.level":                         cfg.Log.Level,
		"log.format":                        cfg.Log.Format,
		"enrich.timeout":                    cfg.Enrich.Timeout,
		"enrich.user_agent":                 cfg.Enrich.UserAgent,
		"enrich.extract":                    cfg.Enrich.Extract,
		"enrich.readme":                     cfg.Enrich.Readme,
		"enrich.benchmark_lookup":           cfg.Enrich.BenchmarkLookup,
		"enrich.concurrency":                cfg.Enrich.Concurrency,
		"enrich.github_token":               cfg.Enrich.GitHubToken,
		"enrich.ai.model":                   cfg.Enrich.AI.Model,
		"enrich.ai.api_key":                 cfg.Enrich.AI.APIKey,
		"enrich.ai.timeout":                 cfg.Enrich.AI.Timeout,
		"scoring.half_life_days":            cfg.Scoring.HalfLifeDays,
		"scoring.code_base":                 cfg.Scoring.CodeBase,
		"scoring.weights_bonus":             cfg.Scoring.WeightsBonus,
		"scoring.stars_cap":                 cfg.Scoring.StarsCap,
		"scoring.max_watch_boost":           cfg.Scoring.MaxWatchBoost,
		"scoring.weights.recency":           cfg.Scoring.Weights.Recency,
		"scoring.weights.code":              cfg.Scoring.Weights.Code,
		"scoring.weights.stars":             cfg.Scoring.Weights.Stars,
		"scoring.weights.watchlist":         cfg.Scoring.Weights.Watchlist,
		"scoring.match_weights.keyword":     cfg.Scoring.MatchWeights.Keyword,
		"scoring.match_weights.author":      cfg.Scoring.MatchWeights.Author,
		"scoring.match_weights.benchmark":   cfg.Scoring.MatchWeights.Benchmark,
		"scoring.match_weights.institution": cfg.Scoring.MatchWeights.Institution,
		"feed.default_limit":                cfg.Feed.DefaultLimit,
		"feed.timezone":                     cfg.Feed.Timezone,
		"server.addr":                       cfg.Server.Addr,
		"server.requests_per_minute":        cfg.Server.RequestsPerMinute,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig decodes the merged viper configuration and validates it.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := defaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg types.Config) error {
	var errs []error
	if cfg.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if cfg.Enrich.Concurrency < 1 || cfg.Enrich.Concurrency > 5 {
		errs = append(errs, fmt.Errorf("enrich.concurrency must be between 1 and 5, got %d", cfg.Enrich.Concurrency))
	}
	if cfg.Enrich.Timeout < 0 || cfg.Enrich.AI.Timeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if cfg.Feed.DefaultLimit < 1 || cfg.Feed.DefaultLimit > feed.MaxLimit {
		errs = append(errs, fmt.Errorf("feed.default_limit must be between 1 and %d", feed.MaxLimit))
	}
	if _, err := location(cfg.Feed); err != nil {
		errs = append(errs, err)
	}
	if err := score.Validate(cfg.Scoring); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// location resolves the feed time zone. Empty means the process zone.
func location(cfg types.FeedConfig) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("feed.timezone: %w", err)
	}
	return loc, nil
}
