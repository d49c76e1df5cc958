// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-radar/internal/ingest"
	"github.com/pdiddy/paper-radar/internal/logging"
)

const defaultIngestMax = 100

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "List recent arXiv papers and store them",
	Long: `Ingest queries the arXiv listing API for the most recent papers in the
configured categories and upserts them. Papers already stored are updated in
place when arXiv revised them and left alone otherwise.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSlice("categories", nil, "arXiv categories to list (default: categories from config)")
	ingestCmd.Flags().Int("max", defaultIngestMax, "maximum number of papers to list")
	ingestCmd.Flags().String("format", "json", "summary format: json or yaml")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	categories, _ := cmd.Flags().GetStringSlice("categories")
	if len(categories) == 0 {
		categories = cfg.Categories
	}
	max, _ := cmd.Flags().GetInt("max")
	if max < 1 {
		return fmt.Errorf("--max must be positive, got %d", max)
	}
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client := ingest.NewClient(sourceOptions()...)
	sum, err := ingest.Run(cmd.Context(), client, st, categories, max, logging.Component("ingest"))
	if err != nil {
		return err
	}
	if err := writeOutput(os.Stdout, format, sum); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed to store", sum.Failed)
	}
	return nil
}
