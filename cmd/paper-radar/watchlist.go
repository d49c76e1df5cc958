// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-radar/internal/api"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// watchlistFile is the YAML document read by import and written by export.
type watchlistFile struct {
	Watchlists []types.Watchlist `yaml:"watchlists"`
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the watchlists that rank a user's for-you feed",
}

var watchlistAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a watchlist",
	RunE:  runWatchlistAdd,
}

var watchlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's watchlists",
	RunE:  runWatchlistList,
}

var watchlistRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete one watchlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatchlistRm,
}

var watchlistPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every watchlist of a user",
	RunE:  runWatchlistPurge,
}

var watchlistImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create watchlists from a YAML file",
	Long: `Import reads a YAML document with a top-level "watchlists" list and creates
each entry for --user. Every entry is validated before any is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchlistImport,
}

var watchlistExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's watchlists as YAML",
	RunE:  runWatchlistExport,
}

func init() {
	watchlistCmd.PersistentFlags().String("user", "", "owner of the watchlists (required)")
	watchlistCmd.MarkPersistentFlagRequired("user")

	watchlistAddCmd.Flags().String("type", string(types.WatchKeyword), "keyword, author, benchmark or institution")
	watchlistAddCmd.Flags().String("name", "", "display name")
	watchlistAddCmd.Flags().StringSlice("terms", nil, "terms to match (comma-separated or repeated)")
	watchlistAddCmd.Flags().StringSlice("categories", nil, "restrict matches to these arXiv categories")

	watchlistListCmd.Flags().String("format", "json", "output format: json or yaml")
	watchlistExportCmd.Flags().StringP("output", "o", "", "file to write (default stdout)")

	watchlistCmd.AddCommand(watchlistAddCmd, watchlistListCmd, watchlistRmCmd,
		watchlistPurgeCmd, watchlistImportCmd, watchlistExportCmd)
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlistAdd(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	typ, _ := cmd.Flags().GetString("type")
	name, _ := cmd.Flags().GetString("name")
	terms, _ := cmd.Flags().GetStringSlice("terms")
	categories, _ := cmd.Flags().GetStringSlice("categories")

	w, err := api.ValidateWatchlist(types.Watchlist{
		Type:       types.WatchlistType(typ),
		Name:       name,
		Terms:      terms,
		Categories: categories,
	})
	if err != nil {
		return fmt.Errorf("invalid watchlist: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	w.UserID = user
	w.CreatedAt = time.Now()
	if err := st.CreateWatchlist(cmd.Context(), &w); err != nil {
		return err
	}
	return writeOutput(os.Stdout, "json", w)
}

func runWatchlistList(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := st.Watchlists(cmd.Context(), user)
	if err != nil {
		return err
	}
	return writeOutput(os.Stdout, format, map[string]any{"items": ws})
}

func runWatchlistRm(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteWatchlist(cmd.Context(), user, args[0]); err != nil {
		return fmt.Errorf("deleting watchlist %s: %w", args[0], err)
	}
	fmt.Printf("deleted watchlist %s\n", args[0])
	return nil
}

func runWatchlistPurge(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.DeleteUserWatchlists(cmd.Context(), user)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d watchlist(s) of %s\n", n, user)
	return nil
}

func runWatchlistImport(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	ws, err := parseWatchlistFile(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := importWatchlists(cmd.Context(), st, user, ws, time.Now())
	fmt.Printf("imported %d watchlist(s) for %s\n", n, user)
	return err
}

func runWatchlistExport(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	output, _ := cmd.Flags().GetString("output")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ws, err := st.Watchlists(cmd.Context(), user)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}
	return writeWatchlistFile(w, ws)
}

// parseWatchlistFile decodes and validates every entry of a watchlist file.
// Ids, owners and timestamps in the file are ignored.
func parseWatchlistFile(data []byte) ([]types.Watchlist, error) {
	var doc watchlistFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing watchlist file: %w", err)
	}
	out := make([]types.Watchlist, 0, len(doc.Watchlists))
	for i, raw := range doc.Watchlists {
		w, err := api.ValidateWatchlist(raw)
		if err != nil {
			return nil, fmt.Errorf("watchlist %d (%q): %w", i+1, w.Name, err)
		}
		w.ID = ""
		w.UserID = ""
		w.CreatedAt = time.Time{}
		out = append(out, w)
	}
	return out, nil
}

// importWatchlists stores ws for user in file order. Creation times are a
// millisecond apart so listings keep that order.
func importWatchlists(ctx context.Context, st *store.Store, user string, ws []types.Watchlist, now time.Time) (int, error) {
	for i := range ws {
		ws[i].UserID = user
		ws[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := st.CreateWatchlist(ctx, &ws[i]); err != nil {
			return i, err
		}
	}
	return len(ws), nil
}

func writeWatchlistFile(w io.Writer, ws []types.Watchlist) error {
	for i := range ws {
		ws[i].UserID = ""
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(watchlistFile{Watchlists: ws}); err != nil {
		return fmt.Errorf("encoding watchlists: %w", err)
	}
	return enc.Close()
}
