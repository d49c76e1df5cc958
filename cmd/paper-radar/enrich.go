// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich stored papers with code, extraction and benchmark signals",
	Long: `Enrich runs the enrichment pipeline over an explicit list of arXiv ids or
over the most recent stored papers. Each paper is scraped for code links, its
primary repository is inspected, the abstract is optionally sent to the
extraction model, and leaderboard mappings are looked up. Signals that cannot
be fetched are recorded as missing; only a failed extraction fails a paper.

The per-paper breakdown is printed as JSON or YAML. The command exits non-zero
when any paper failed.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().String("ids", "", "comma-separated arXiv ids (overrides the recency window)")
	enrichCmd.Flags().Int("limit", enrich.DefaultLimit, fmt.Sprintf("papers to process in window mode (max %d)", enrich.MaxLimit))
	enrichCmd.Flags().Int("lookback-days", 0, fmt.Sprintf("only papers published in the last N days (0 = no filter, max %d)", enrich.MaxLookbackDays))
	enrichCmd.Flags().Bool("only-missing", false, "skip papers that were already enriched")
	enrichCmd.Flags().Bool("extract", false, "run structured extraction (default from config)")
	enrichCmd.Flags().Bool("readme", false, "fetch the README and detect weights (default from config)")
	enrichCmd.Flags().Bool("benchmark-lookup", false, "look up leaderboard mappings (default from config)")
	enrichCmd.Flags().Int("concurrency", 0, fmt.Sprintf("papers enriched at once (1-%d, default from config)", enrich.MaxConcurrency))
	enrichCmd.Flags().String("format", "json", "summary format: json or yaml")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	idsCSV, _ := cmd.Flags().GetString("ids")
	ids, err := arxivid.ParseList(idsCSV)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	lookback, _ := cmd.Flags().GetInt("lookback-days")
	onlyMissing, _ := cmd.Flags().GetBool("only-missing")
	format, _ := cmd.Flags().GetString("format")

	flags := configuredFlags()
	if cmd.Flags().Changed("extract") {
		flags.Extract, _ = cmd.Flags().GetBool("extract")
	}
	if cmd.Flags().Changed("readme") {
		flags.Readme, _ = cmd.Flags().GetBool("readme")
	}
	if cmd.Flags().Changed("benchmark-lookup") {
		flags.BenchmarkLookup, _ = cmd.Flags().GetBool("benchmark-lookup")
	}
	concurrency := cfg.Enrich.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency, _ = cmd.Flags().GetInt("concurrency")
		if concurrency < 1 || concurrency > enrich.MaxConcurrency {
			return fmt.Errorf("--concurrency must be between 1 and %d, got %d", enrich.MaxConcurrency, concurrency)
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	o := newOrchestrator(st, flags, concurrency, nil)
	sum, err := o.Run(cmd.Context(), enrich.Selection{
		IDs:          ids,
		Limit:        limit,
		LookbackDays: lookback,
		OnlyMissing:  onlyMissing,
	})
	if err != nil {
		return err
	}
	if err := writeOutput(os.Stdout, format, sum); err != nil {
		return err
	}
	if n := sum.Failed(); n > 0 {
		return fmt.Errorf("%d paper(s) failed enrichment", n)
	}
	return nil
}
