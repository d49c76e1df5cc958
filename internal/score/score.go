// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score computes the relevance score of a paper.
//
// The global score is a weighted sum of four components, each in [0,1]:
//
//   - recency: 2^(-ageDays/halfLifeDays); a future publish date counts as
//     age 0 and a missing one scores 0.
//   - code: 0 without code links, otherwise CodeBase plus WeightsBonus when
//     the repository distributes weights, capped at 1.
//   - stars: sqrt(min(stars, cap)/cap), 0 when unknown or not positive.
//   - watchlist: 1 - exp(-points/MaxWatchBoost) over the weighted term
//     matches of the user's watchlists.
//
// Compute is pure and safe for concurrent use.
package score

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/paper-radar/internal/watchlist"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid scoring config")

const weightTolerance = 1e-6

// Signals are the derived inputs of a score, taken from the latest
// enrichment and extraction rows.
type Signals struct {
	CodeURLs   []string
	HasWeights *bool
	Stars      *int
	Benchmarks []string
}

// DefaultConfig returns the hand-tuned scoring constants.
func DefaultConfig() types.ScoringConfig {
	return types.ScoringConfig{
		HalfLifeDays:  5,
		CodeBase:      0.7,
		WeightsBonus:  0.3,
		StarsCap:      1500,
		MaxWatchBoost: 5,
		Weights: types.ScoreWeights{
			Recency:   0.5,
			Code:      0.15,
			Stars:     0.15,
			Watchlist: 0.2,
		},
		MatchWeights: watchlist.DefaultWeights(),
	}
}

// Validate checks that cfg can only produce scores in [0,1].
func Validate(cfg types.ScoringConfig) error {
	if cfg.HalfLifeDays <= 0 {
		return fmt.Errorf("%w: half_life_days must be positive, got %v", ErrInvalidConfig, cfg.HalfLifeDays)
	}
	if cfg.StarsCap <= 0 {
		return fmt.Errorf("%w: stars_cap must be positive, got %v", ErrInvalidConfig, cfg.StarsCap)
	}
	if cfg.MaxWatchBoost <= 0 {
		return fmt.Errorf("%w: max_watch_boost must be positive, got %v", ErrInvalidConfig, cfg.MaxWatchBoost)
	}
	if cfg.CodeBase < 0 || cfg.WeightsBonus < 0 {
		return fmt.Errorf("%w: code_base and weights_bonus must not be negative", ErrInvalidConfig)
	}

	w := cfg.Weights
	for name, v := range map[string]float64{"recency": w.Recency, "code": w.Code, "stars": w.Stars, "watchlist": w.Watchlist} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weight %s must not be negative, got %v", ErrInvalidConfig, name, v)
		}
	}
	if sum := w.Recency + w.Code + w.Stars + w.Watchlist; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}

	m := cfg.MatchWeights
	if m.Keyword < 0 || m.Author < 0 || m.Benchmark < 0 || m.Institution < 0 {
		return fmt.Errorf("%w: match weights must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Compute scores p. Pass no watchlists for the stored, non-personalized
// score.
func Compute(p types.Paper, sig Signals, ws []types.Watchlist, cfg types.ScoringConfig, now time.Time) types.Score {
	var points float64
	if len(ws) > 0 {
		subject := watchlist.SubjectOf(p, nil)
		subject.Benchmarks = sig.Benchmarks
		points = watchlist.Points(subject, ws, cfg.MatchWeights)
	}

	c := types.ScoreComponents{
		Recency:   Recency(p.PublishedAt, now, cfg.HalfLifeDays),
		Code:      Code(sig.CodeURLs, sig.HasWeights, cfg.CodeBase, cfg.WeightsBonus),
		Stars:     Stars(sig.Stars, cfg.StarsCap),
		Watchlist: Watch(points, cfg.MaxWatchBoost),
	}
	w := cfg.Weights
	global := w.Recency*c.Recency + w.Code*c.Code + w.Stars*c.Stars + w.Watchlist*c.Watchlist

	return types.Score{Global: clamp01(global), Components: c}
}

// Recency decays by half every halfLifeDays after published.
func Recency(published, now time.Time, halfLifeDays float64) float64 {
	if published.IsZero() || halfLifeDays <= 0 {
		return 0
	}
	age := now.Sub(published).Hours() / 24
	if age <= 0 {
		return 1
	}
	return clamp01(math.Exp2(-age / halfLifeDays))
}

// Code rewards available code, more so when weights are distributed.
func Code(codeURLs []string, hasWeights *bool, base, bonus float64) float64 {
	if len(codeURLs) == 0 {
		return 0
	}
	v := base
	if hasWeights != nil && *hasWeights {
		v += bonus
	}
	return clamp01(v)
}

// Stars is a concave transform of the repository star count.
func Stars(stars *int, limit float64) float64 {
	if stars == nil || *stars <= 0 || limit <= 0 {
		return 0
	}
	return clamp01(math.Sqrt(math.Min(float64(*stars), limit) / limit))
}

// Watch squashes watchlist points into [0,1).
func Watch(points, k float64) float64 {
	if points <= 0 || k <= 0 {
		return 0
	}
	return clamp01(1 - math.Exp(-points/k))
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
