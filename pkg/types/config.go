// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every external source.
type HTTPConfig struct {
	// Timeout bounds each external call, retries included (default 15s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds settings for the structured-extraction model.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds one extraction call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// EnrichConfig holds settings for the enrichment batch.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Extract enables the structured-extraction call.
	Extract bool `json:"extract" yaml:"extract" mapstructure:"extract"`

	// Readme enables the README fetch and the weights heuristic.
	Readme bool `json:"readme" yaml:"readme" mapstructure:"readme"`

	// BenchmarkLookup enables the leaderboard mapping call.
	BenchmarkLookup bool `json:"benchmark_lookup" yaml:"benchmark_lookup" mapstructure:"benchmark_lookup"`

	// Concurrency is the number of papers enriched at once (1 = sequential, max 5).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// GitHubToken authenticates code-host requests when set.
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty" mapstructure:"github_token"`

	AI AIConfig `json:"ai" yaml:"ai" mapstructure:"ai"`
}

// ScoreWeights are the coefficients of the global score. They must sum to 1.
type ScoreWeights struct {
	Recency   float64 `json:"recency" yaml:"recency" mapstructure:"recency"`
	Code      float64 `json:"code" yaml:"code" mapstructure:"code"`
	Stars     float64 `json:"stars" yaml:"stars" mapstructure:"stars"`
	Watchlist float64 `json:"watchlist" yaml:"watchlist" mapstructure:"watchlist"`
}

// MatchWeights are the points a single matching watchlist term contributes,
// per watchlist type.
type MatchWeights struct {
	Keyword     float64 `json:"keyword" yaml:"keyword" mapstructure:"keyword"`
	Author      float64 `json:"author" yaml:"author" mapstructure:"author"`
	Benchmark   float64 `json:"benchmark" yaml:"benchmark" mapstructure:"benchmark"`
	Institution float64 `json:"institution" yaml:"institution" mapstructure:"institution"`
}

// ScoringConfig holds the hand-tuned constants of the scoring engine.
type ScoringConfig struct {
	// HalfLifeDays is the age at which the recency component halves (default 5).
	HalfLifeDays float64 `json:"half_life_days" yaml:"half_life_days" mapstructure:"half_life_days"`

	// CodeBase is the code component when any code URL exists (default 0.7).
	CodeBase float64 `json:"code_base" yaml:"code_base" mapstructure:"code_base"`

	// WeightsBonus is added to CodeBase when weights are distributed (default 0.3).
	WeightsBonus float64 `json:"weights_bonus" yaml:"weights_bonus" mapstructure:"weights_bonus"`

	// StarsCap is the star count at which the stars component saturates (default 1500).
	StarsCap float64 `json:"stars_cap" yaml:"stars_cap" mapstructure:"stars_cap"`

	// MaxWatchBoost is the squashing constant k in 1 - exp(-points/k) (default 5).
	MaxWatchBoost float64 `json:"max_watch_boost" yaml:"max_watch_boost" mapstructure:"max_watch_boost"`

	Weights      ScoreWeights `json:"weights" yaml:"weights" mapstructure:"weights"`
	MatchWeights MatchWeights `json:"match_weights" yaml:"match_weights" mapstructure:"match_weights"`
}

// FeedConfig holds settings for the feed assembler.
type FeedConfig struct {
	// DefaultLimit is the page size when none is requested (default 25).
	DefaultLimit int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit"`

	// Timezone names the location whose midnight starts the "today" view.
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// RequestsPerMinute caps requests per client IP (0 disables the limit).
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// LogConfig selects the log level and output format (json or console).
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups every section of the paper-radar configuration file.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// Categories are the arXiv categories the ingest command lists.
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Enrich  EnrichConfig  `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Feed    FeedConfig    `json:"feed" yaml:"feed" mapstructure:"feed"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
}
