// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/internal/score"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// scoreReport compares the stored global score of a paper with a live
// recompute against a user's watchlists.
type scoreReport struct {
	ArxivID string            `json:"arxivId" yaml:"arxiv_id"`
	Title   string            `json:"title" yaml:"title"`
	Stored  *types.Score      `json:"stored" yaml:"stored"`
	Live    score.Explanation `json:"live" yaml:"live"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <arxiv-id>",
	Short: "Explain the score of a paper",
	Long: `Score prints the stored global score of a paper next to a live recompute.
With --user the live score includes that user's watchlists and lists the
terms that matched.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().String("user", "", "user whose watchlists boost the live score")
	scoreCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	id, err := arxivid.Canonical(args[0])
	if err != nil {
		return err
	}
	user, _ := cmd.Flags().GetString("user")
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	now := time.Now()
	d, err := feed.Detail(ctx, st, id, "", cfg.Scoring, now)
	if err != nil {
		return err
	}
	var ws []types.Watchlist
	if user != "" {
		if ws, err = st.Watchlists(ctx, user); err != nil {
			return err
		}
	}

	return writeOutput(os.Stdout, format, scoreReport{
		ArxivID: d.Paper.ArxivID,
		Title:   d.Paper.Title,
		Stored:  d.Score,
		Live:    score.Explain(d.Paper, feed.DetailSignals(d), ws, cfg.Scoring, now),
	})
}
