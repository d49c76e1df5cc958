// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/pkg/types"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print one page of the ranked paper feed",
	Long: `Feed prints one page of the today, week or for-you view. Pass the
nextCursor of a page to --cursor to fetch the next one. The for-you view is
ranked with the watchlists of --user when it has any.`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().String("view", string(types.ViewToday), "feed view: today, week or for-you")
	feedCmd.Flags().StringSlice("categories", nil, "only papers in at least one of these categories")
	feedCmd.Flags().Bool("code-only", false, "only papers with a code link")
	feedCmd.Flags().Bool("has-weights", false, "only papers whose repository distributes weights")
	feedCmd.Flags().Bool("with-benchmarks", false, "only papers mapped to a benchmark")
	feedCmd.Flags().String("user", "", "user whose watchlists rank the for-you view")
	feedCmd.Flags().String("cursor", "", "cursor returned by the previous page")
	feedCmd.Flags().Int("limit", 0, fmt.Sprintf("page size (1-%d, default from config)", feed.MaxLimit))
	feedCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	view, _ := cmd.Flags().GetString("view")
	categories, _ := cmd.Flags().GetStringSlice("categories")
	codeOnly, _ := cmd.Flags().GetBool("code-only")
	hasWeights, _ := cmd.Flags().GetBool("has-weights")
	withBenchmarks, _ := cmd.Flags().GetBool("with-benchmarks")
	user, _ := cmd.Flags().GetString("user")
	cursor, _ := cmd.Flags().GetString("cursor")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := newAssembler(st, nil)
	if err != nil {
		return err
	}
	page, err := a.Page(cmd.Context(), feed.Query{
		View:           types.FeedView(view),
		Categories:     categories,
		CodeOnly:       codeOnly,
		HasWeights:     hasWeights,
		WithBenchmarks: withBenchmarks,
		UserID:         user,
		Cursor:         cursor,
		Limit:          limit,
	})
	if err != nil {
		return err
	}
	return writeOutput(os.Stdout, format, page)
}
