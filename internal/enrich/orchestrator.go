// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich selects papers due for enrichment, pulls signals for each
// one from the external adapters, stores the derived records, and refreshes
// the stored score.
//
// Each adapter may fail on its own. A failed link scrape, repository
// lookup, README fetch or leaderboard lookup degrades to a missing signal;
// a failed structured extraction fails the paper. One paper's failure never
// stops the batch.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/benchmark"
	"github.com/pdiddy/paper-radar/internal/codehost"
	"github.com/pdiddy/paper-radar/internal/extract"
	"github.com/pdiddy/paper-radar/internal/metrics"
	"github.com/pdiddy/paper-radar/internal/score"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// Adapter source labels used in logs and metrics.
const (
	SourceLinks      = "arxiv-abs"
	SourceRepo       = "github"
	SourceReadme     = "github-readme"
	SourceExtract    = "claude"
	SourceBenchmarks = "paperswithcode"
)

// MaxConcurrency caps the worker pool.
const MaxConcurrency = 5

// LinkScraper finds code links on a paper's mirror page.
type LinkScraper interface {
	CodeLinks(ctx context.Context, arxivID string) ([]string, error)
}

// RepoFetcher reads repository metadata and READMEs from the code host.
type RepoFetcher interface {
	Repo(ctx context.Context, owner, name string) (codehost.Repo, error)
	Readme(ctx context.Context, owner, name string) (string, error)
}

// BenchmarkMapper maps a paper to leaderboards.
type BenchmarkMapper interface {
	Lookup(ctx context.Context, arxivID string) (types.BenchmarkMapping, error)
}

// Store is the persistence the orchestrator needs.
type Store interface {
	CandidateStore
	InsertEnrichment(ctx context.Context, r *types.EnrichmentRecord) error
	InsertExtraction(ctx context.Context, x *types.StructuredExtraction) error
	InsertBenchmarkMapping(ctx context.Context, m *types.BenchmarkMapping) error
	UpsertScore(ctx context.Context, rec types.ScoreRecord) error
}

// Deps are the collaborators of an Orchestrator. Links, Repos and
// Benchmarks may be nil, in which case their steps are skipped. Extractor
// must be set when Config.Flags.Extract is on.
type Deps struct {
	Store      Store
	Links      LinkScraper
	Repos      RepoFetcher
	Extractor  extract.Extractor
	Benchmarks BenchmarkMapper
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Config selects the optional steps and the pool size.
type Config struct {
	Flags types.EnrichFlags

	// Concurrency is the number of papers processed at once, clamped to
	// [1, MaxConcurrency]. 1 processes the list sequentially.
	Concurrency int

	Scoring types.ScoringConfig
}

// Orchestrator runs enrichment for single papers and batches.
type Orchestrator struct {
	deps Deps
	cfg  Config
}

// New creates an Orchestrator.
func New(deps Deps, cfg Config) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	cfg.Concurrency = min(max(cfg.Concurrency, 1), MaxConcurrency)
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Result is what EnrichPaper stored for one paper.
type Result struct {
	Enrichment types.EnrichmentRecord
	Extraction *types.StructuredExtraction
	Mapping    *types.BenchmarkMapping
	Score      types.Score

	// Degraded lists the sources whose calls failed and fell back.
	Degraded []string
}

// Info summarizes r in one line for the batch report.
func (r Result) Info() string {
	var b strings.Builder
	fmt.Fprintf(&b, "code=%d", len(r.Enrichment.CodeURLs))
	if r.Enrichment.PrimaryRepo != "" {
		fmt.Fprintf(&b, " repo=%s", r.Enrichment.PrimaryRepo)
	}
	if r.Enrichment.Stars != nil {
		fmt.Fprintf(&b, " stars=%d", *r.Enrichment.Stars)
	}
	if r.Enrichment.HasWeights != nil {
		fmt.Fprintf(&b, " weights=%t", *r.Enrichment.HasWeights)
	}
	if r.Extraction != nil {
		fmt.Fprintf(&b, " benchmarks=%d", len(r.Extraction.Benchmarks))
	}
	if r.Mapping != nil {
		fmt.Fprintf(&b, " leaderboards=%d", len(r.Mapping.Leaderboards))
	}
	fmt.Fprintf(&b, " score=%.3f", r.Score.Global)
	if len(r.Degraded) > 0 {
		fmt.Fprintf(&b, " degraded=%s", strings.Join(r.Degraded, ","))
	}
	return b.String()
}

// EnrichPaper pulls every enabled signal for p, stores the derived
// records, and upserts the paper's non-personalized score. The returned
// error is non-nil only when the paper failed: extraction failed or a
// write failed.
func (o *Orchestrator) EnrichPaper(ctx context.Context, p types.Paper) (Result, error) {
	log := o.deps.Logger.With().Str("arxiv_id", p.ArxivID).Logger()
	var res Result

	links := o.scrapeLinks(ctx, p.ArxivID)
	o.record(&res, &log, SourceLinks, links.Status, links.Err)

	rec := types.EnrichmentRecord{PaperID: p.ID, CodeURLs: links.Value}
	owner, name := primaryRepo(links.Value)
	if owner != "" {
		rec.PrimaryRepo = owner + "/" + name

		repo := o.fetchRepo(ctx, owner, name)
		o.record(&res, &log, SourceRepo, repo.Status, repo.Err)
		if repo.Status == OK {
			stars := repo.Value.Stars
			rec.Stars = &stars
			rec.License = repo.Value.License
		}

		readme := o.fetchReadme(ctx, owner, name)
		o.record(&res, &log, SourceReadme, readme.Status, readme.Err)
		if readme.Status == OK {
			hasWeights := codehost.HasWeights(readme.Value)
			rec.HasWeights = &hasWeights
			rec.ReadmeExcerpt, rec.ReadmeHash = codehost.Excerpt(readme.Value)
		}
	}

	ext := o.runExtraction(ctx, p)
	o.record(&res, &log, SourceExtract, ext.Status, ext.Err)
	if ext.Status == Failed {
		return res, fmt.Errorf("extraction: %w", ext.Err)
	}
	if ext.Status == OK {
		res.Extraction = &types.StructuredExtraction{
			PaperID:    p.ID,
			Method:     ext.Value.Method,
			Tasks:      ext.Value.Tasks,
			Datasets:   ext.Value.Datasets,
			Benchmarks: ext.Value.Benchmarks,
			SOTAClaims: ext.Value.SOTAClaims,
			CodeURLs:   ext.Value.CodeURLs,
		}
		rec.CodeURLs = arxivid.Dedupe(append(append([]string{}, rec.CodeURLs...), ext.Value.CodeURLs...))
	}
	if rec.CodeURLs == nil {
		rec.CodeURLs = []string{}
	}

	mapping := o.lookupBenchmarks(ctx, p.ArxivID)
	o.record(&res, &log, SourceBenchmarks, mapping.Status, mapping.Err)
	if mapping.Status != Skipped {
		m := mapping.Value
		m.PaperID = p.ID
		res.Mapping = &m
	}

	if err := o.deps.Store.InsertEnrichment(ctx, &rec); err != nil {
		return res, err
	}
	res.Enrichment = rec
	if res.Extraction != nil {
		if err := o.deps.Store.InsertExtraction(ctx, res.Extraction); err != nil {
			return res, err
		}
	}
	if res.Mapping != nil {
		err := o.deps.Store.InsertBenchmarkMapping(ctx, res.Mapping)
		if errors.Is(err, store.ErrConflict) {
			log.Debug().Msg("benchmark mapping unchanged")
		} else if err != nil {
			return res, err
		}
	}

	sig := score.Signals{CodeURLs: rec.CodeURLs, HasWeights: rec.HasWeights, Stars: rec.Stars}
	if res.Extraction != nil {
		sig.Benchmarks = res.Extraction.Benchmarks
	}
	now := o.deps.Now()
	res.Score = score.Compute(p, sig, nil, o.cfg.Scoring, now)
	if err := o.deps.Store.UpsertScore(ctx, types.ScoreRecord{PaperID: p.ID, Score: res.Score, ComputedAt: now}); err != nil {
		return res, err
	}

	log.Info().Float64("score", res.Score.Global).Int("code_urls", len(rec.CodeURLs)).Msg("enriched")
	return res, nil
}

func (o *Orchestrator) record(res *Result, log *zerolog.Logger, source string, status OutcomeStatus, err error) {
	if status == Skipped {
		return
	}
	o.deps.Metrics.IncAdapterOutcome(source, status.String())
	if status == Degraded {
		res.Degraded = append(res.Degraded, source)
		log.Warn().Err(err).Str("source", source).Msg("signal unavailable")
	}
}

func (o *Orchestrator) scrapeLinks(ctx context.Context, arxivID string) Outcome[[]string] {
	if o.deps.Links == nil {
		return Outcome[[]string]{Value: []string{}}
	}
	links, err := o.deps.Links.CodeLinks(ctx, arxivID)
	if err != nil {
		return degradedOutcome([]string{}, err)
	}
	if links == nil {
		links = []string{}
	}
	return okOutcome(links)
}

func (o *Orchestrator) fetchRepo(ctx context.Context, owner, name string) Outcome[codehost.Repo] {
	if o.deps.Repos == nil {
		return Outcome[codehost.Repo]{}
	}
	repo, err := o.deps.Repos.Repo(ctx, owner, name)
	if err != nil {
		return degradedOutcome(codehost.Repo{}, err)
	}
	return okOutcome(repo)
}

func (o *Orchestrator) fetchReadme(ctx context.Context, owner, name string) Outcome[string] {
	if !o.cfg.Flags.Readme || o.deps.Repos == nil {
		return Outcome[string]{}
	}
	readme, err := o.deps.Repos.Readme(ctx, owner, name)
	if err != nil {
		return degradedOutcome("", err)
	}
	return okOutcome(readme)
}

func (o *Orchestrator) runExtraction(ctx context.Context, p types.Paper) Outcome[extract.Result] {
	if !o.cfg.Flags.Extract {
		return Outcome[extract.Result]{}
	}
	if o.deps.Extractor == nil {
		return failedOutcome[extract.Result](errors.New("no extractor configured"))
	}
	r, err := o.deps.Extractor.Extract(ctx, p.Title, p.Abstract)
	if err != nil {
		return failedOutcome[extract.Result](err)
	}
	return okOutcome(extract.Normalize(r))
}

func (o *Orchestrator) lookupBenchmarks(ctx context.Context, arxivID string) Outcome[types.BenchmarkMapping] {
	if !o.cfg.Flags.BenchmarkLookup || o.deps.Benchmarks == nil {
		return Outcome[types.BenchmarkMapping]{}
	}
	m, err := o.deps.Benchmarks.Lookup(ctx, arxivID)
	if err != nil {
		return degradedOutcome(benchmark.NotFound(arxivID), err)
	}
	return okOutcome(m)
}

// primaryRepo returns the first link that names a repository.
func primaryRepo(links []string) (owner, name string) {
	for _, l := range links {
		if owner, name, ok := codehost.ParseRepo(l); ok {
			return owner, name
		}
	}
	return "", ""
}
