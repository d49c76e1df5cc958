// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Run selects candidates for sel and enriches them. Only a selection
// failure is returned as an error; per-paper failures are reported in the
// summary items.
func (o *Orchestrator) Run(ctx context.Context, sel Selection) (types.EnrichSummary, error) {
	started := o.deps.Now()
	if len(sel.IDs) == 0 {
		sel = ClampSelection(sel)
	}
	papers, err := SelectCandidates(ctx, o.deps.Store, sel, started)
	if err != nil {
		return types.EnrichSummary{}, err
	}

	sum := o.Process(ctx, papers)
	sum.StartedAt = started
	sum.Limit = sel.Limit
	sum.LookbackDays = sel.LookbackDays
	return sum, nil
}

// Process enriches papers with at most Config.Concurrency in flight. Items
// keep the order of papers whatever order the workers finish in.
func (o *Orchestrator) Process(ctx context.Context, papers []types.Paper) types.EnrichSummary {
	started := o.deps.Now()
	o.deps.Logger.Info().Int("papers", len(papers)).Int("concurrency", o.cfg.Concurrency).Msg("enrichment batch started")

	items := make([]types.EnrichItem, len(papers))
	var g errgroup.Group
	g.SetLimit(o.cfg.Concurrency)
	for i := range papers {
		g.Go(func() error {
			items[i] = o.processOne(ctx, papers[i])
			return nil
		})
	}
	g.Wait()

	finished := o.deps.Now()
	o.deps.Metrics.ObserveBatchDuration(finished.Sub(started).Seconds())

	sum := types.EnrichSummary{
		StartedAt:  started,
		FinishedAt: finished,
		Flags:      o.cfg.Flags,
		Processed:  len(items),
		Items:      items,
	}
	o.deps.Logger.Info().Int("processed", sum.Processed).Int("failed", sum.Failed()).Msg("enrichment batch finished")
	return sum
}

func (o *Orchestrator) processOne(ctx context.Context, p types.Paper) types.EnrichItem {
	item := types.EnrichItem{ID: p.ArxivID}
	if err := ctx.Err(); err != nil {
		item.Error = err.Error()
		o.deps.Metrics.IncEnrichItem(false)
		return item
	}

	res, err := o.EnrichPaper(ctx, p)
	if err != nil {
		item.Error = err.Error()
		o.deps.Logger.Error().Err(err).Str("arxiv_id", p.ArxivID).Msg("enrichment failed")
		o.deps.Metrics.IncEnrichItem(false)
		return item
	}
	item.OK = true
	item.Info = res.Info()
	o.deps.Metrics.IncEnrichItem(true)
	return item
}
