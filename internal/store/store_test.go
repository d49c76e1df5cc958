// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/pkg/types"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", "radar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addPaper(t *testing.T, s *Store, id, arxivID string, published time.Time, categories ...string) types.Paper {
	t.Helper()
	p := types.Paper{
		ID:          id,
		ArxivID:     arxivID,
		Title:       "Paper " + arxivID,
		Abstract:    "Abstract of " + arxivID,
		Authors:     []string{"A. Author"},
		Categories:  categories,
		PublishedAt: published,
		UpdatedAt:   published,
	}
	_, err := s.UpsertPaper(context.Background(), &p)
	require.NoError(t, err)
	return p
}

func intP(v int) *int       { return &v }
func boolP(v bool) *bool    { return &v }
func strP(v string) *string { return &v }

func TestUpsertPaper(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := types.Paper{ArxivID: "2401.00001", Title: "v1", PublishedAt: base, UpdatedAt: base}
	outcome, err := s.UpsertPaper(ctx, &p)
	require.NoError(t, err)
	assert.Equal(t, Inserted, outcome)
	require.NotEmpty(t, p.ID)

	older := types.Paper{ArxivID: "2401.00001", Title: "stale", PublishedAt: base, UpdatedAt: base}
	outcome, err = s.UpsertPaper(ctx, &older)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, outcome)
	assert.Equal(t, p.ID, older.ID)

	newer := types.Paper{ArxivID: "2401.00001", Title: "v2", PublishedAt: base, UpdatedAt: base.Add(time.Hour)}
	outcome, err = s.UpsertPaper(ctx, &newer)
	require.NoError(t, err)
	assert.Equal(t, Updated, outcome)

	got, err := s.PaperByArxivID(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "v2", got.Title)
	assert.True(t, got.UpdatedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, []string{}, got.Authors)
}

func TestPaperLookups(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	a := addPaper(t, s, "", "2401.00001", base)
	b := addPaper(t, s, "", "2401.00002", base)

	_, err := s.PaperByArxivID(ctx, "2401.99999")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.PaperByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "2401.00002", got.ArxivID)

	papers, err := s.PapersByArxivIDs(ctx, []string{"2401.00002", "2401.99999", "2401.00001"})
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, b.ID, papers[0].ID)
	assert.Equal(t, a.ID, papers[1].ID)
}

func TestRecentPapers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		addPaper(t, s, "", "2401.0000"+string(rune('1'+i)), base.Add(time.Duration(i)*24*time.Hour))
	}

	papers, err := s.RecentPapers(ctx, RecentQuery{Limit: 3})
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "2401.00005", papers[0].ArxivID)
	assert.Equal(t, "2401.00003", papers[2].ArxivID)

	papers, err = s.RecentPapers(ctx, RecentQuery{Limit: 10, Since: base.Add(3 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, papers, 2)

	newest, err := s.PaperByArxivID(ctx, "2401.00005")
	require.NoError(t, err)
	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{PaperID: newest.ID}))

	papers, err = s.RecentPapers(ctx, RecentQuery{Limit: 2, OnlyMissing: true})
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "2401.00004", papers[0].ArxivID)
}

func TestLatestWins(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := addPaper(t, s, "", "2401.00001", base)

	none, err := s.LatestEnrichment(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{
		PaperID: p.ID, Stars: intP(10), CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{
		PaperID: p.ID, Stars: intP(50), License: strP("MIT"), HasWeights: boolP(true),
		CodeURLs: []string{"https://github.com/a/b"}, PrimaryRepo: "a/b", CreatedAt: base.Add(2 * time.Hour),
	}))
	// Same timestamp as the newest: insertion order breaks the tie.
	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{
		PaperID: p.ID, Stars: intP(99), CreatedAt: base.Add(2 * time.Hour),
	}))

	e, err := s.LatestEnrichment(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, e.Stars)
	assert.Equal(t, 99, *e.Stars)
	assert.Nil(t, e.License)
	assert.Nil(t, e.HasWeights)
	assert.Equal(t, []string{}, e.CodeURLs)

	require.NoError(t, s.InsertExtraction(ctx, &types.StructuredExtraction{
		PaperID: p.ID, Benchmarks: []string{"old"}, CreatedAt: base,
	}))
	require.NoError(t, s.InsertExtraction(ctx, &types.StructuredExtraction{
		PaperID: p.ID, Method: strP("M"), Benchmarks: []string{"MMLU"},
		SOTAClaims: []types.SOTAClaim{{Benchmark: "MMLU", Value: strP("90.1")}}, CreatedAt: base.Add(time.Minute),
	}))
	x, err := s.LatestExtraction(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"MMLU"}, x.Benchmarks)
	assert.Equal(t, "M", *x.Method)
	require.Len(t, x.SOTAClaims, 1)
	assert.Equal(t, "90.1", *x.SOTAClaims[0].Value)
}

func TestBenchmarkMappingConflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := addPaper(t, s, "", "2401.00001", base)

	m := types.BenchmarkMapping{PaperID: p.ID, SearchURL: "https://x/search", Fingerprint: "fp1"}
	require.NoError(t, s.InsertBenchmarkMapping(ctx, &m))

	again := types.BenchmarkMapping{PaperID: p.ID, SearchURL: "https://x/search", Fingerprint: "fp1"}
	assert.ErrorIs(t, s.InsertBenchmarkMapping(ctx, &again), ErrConflict)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM benchmark_mappings WHERE paper_id = ?`, p.ID).Scan(&n))
	assert.Equal(t, 1, n)

	found := types.BenchmarkMapping{
		PaperID: p.ID, Found: true, RepoStars: intP(7), Fingerprint: "fp2", CreatedAt: time.Now().Add(time.Hour),
		Leaderboards: []types.LeaderboardLink{{Label: "L", URL: "https://x/sota/l"}},
	}
	require.NoError(t, s.InsertBenchmarkMapping(ctx, &found))

	latest, err := s.LatestBenchmarkMapping(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, latest.Found)
	assert.Equal(t, 7, *latest.RepoStars)
	assert.Equal(t, "fp2", latest.Fingerprint)
	require.Len(t, latest.Leaderboards, 1)
}

func TestBenchmarkMappingRevertsToEarlierFingerprint(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := addPaper(t, s, "", "2401.00001", base)
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	found := func(at time.Time) *types.BenchmarkMapping {
		return &types.BenchmarkMapping{PaperID: p.ID, Found: true, RepoStars: intP(3), Fingerprint: "fpA", CreatedAt: at}
	}
	require.NoError(t, s.InsertBenchmarkMapping(ctx, found(t0)))
	require.NoError(t, s.InsertBenchmarkMapping(ctx, &types.BenchmarkMapping{
		PaperID: p.ID, Fingerprint: "fpB", CreatedAt: t0.Add(time.Hour),
	}))

	latest, err := s.LatestBenchmarkMapping(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, latest.Found)

	// The paper is found again with the same result as the first run.
	require.NoError(t, s.InsertBenchmarkMapping(ctx, found(t0.Add(2*time.Hour))))

	latest, err = s.LatestBenchmarkMapping(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, latest.Found)
	assert.Equal(t, "fpA", latest.Fingerprint)

	// Repeating the current result is still a no-op.
	assert.ErrorIs(t, s.InsertBenchmarkMapping(ctx, found(t0.Add(3*time.Hour))), ErrConflict)

	var n int
	require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM benchmark_mappings WHERE paper_id = ?`, p.ID).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestScores(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := addPaper(t, s, "", "2401.00001", base)

	rec, err := s.Score(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.UpsertScore(ctx, types.ScoreRecord{PaperID: p.ID, Score: types.Score{Global: 0.25}}))
	require.NoError(t, s.UpsertScore(ctx, types.ScoreRecord{PaperID: p.ID, Score: types.Score{
		Global: 0.8, Components: types.ScoreComponents{Recency: 1, Code: 1, Stars: 1},
	}}))

	rec, err = s.Score(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, rec.Score.Global, 1e-9)
	assert.InDelta(t, 1.0, rec.Score.Components.Stars, 1e-9)
	assert.False(t, rec.ComputedAt.IsZero())
}

func TestDeletePaperCascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p := addPaper(t, s, "", "2401.00001", base)

	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{PaperID: p.ID}))
	require.NoError(t, s.InsertExtraction(ctx, &types.StructuredExtraction{PaperID: p.ID}))
	require.NoError(t, s.InsertBenchmarkMapping(ctx, &types.BenchmarkMapping{PaperID: p.ID, Fingerprint: "f"}))
	require.NoError(t, s.UpsertScore(ctx, types.ScoreRecord{PaperID: p.ID}))

	require.NoError(t, s.DeletePaper(ctx, p.ID))
	assert.ErrorIs(t, s.DeletePaper(ctx, p.ID), ErrNotFound)

	for _, table := range []string{"enrichments", "extractions", "benchmark_mappings", "scores"} {
		var n int
		require.NoError(t, s.db.QueryRow(`SELECT count(*) FROM `+table).Scan(&n))
		assert.Zero(t, n, table)
	}
}

func TestDerivedRowRequiresPaper(t *testing.T) {
	s := openTestStore(t)
	err := s.InsertEnrichment(context.Background(), &types.EnrichmentRecord{PaperID: "missing"})
	assert.Error(t, err)
}

func TestWatchlists(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	w1 := types.Watchlist{UserID: "u1", Type: types.WatchKeyword, Name: "RAG", Terms: []string{"retrieval"}, CreatedAt: base}
	w2 := types.Watchlist{UserID: "u1", Type: types.WatchAuthor, Name: "People", Terms: []string{"Ada"},
		Categories: []string{"cs.CL"}, CreatedAt: base.Add(time.Minute)}
	w3 := types.Watchlist{UserID: "u2", Type: types.WatchKeyword, Name: "Other", Terms: []string{"x"}}
	for _, w := range []*types.Watchlist{&w1, &w2, &w3} {
		require.NoError(t, s.CreateWatchlist(ctx, w))
		require.NotEmpty(t, w.ID)
	}
	assert.Error(t, s.CreateWatchlist(ctx, &types.Watchlist{Name: "orphan"}))

	lists, err := s.Watchlists(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "RAG", lists[0].Name)
	assert.Equal(t, []string{}, lists[0].Categories)
	assert.Equal(t, []string{"cs.CL"}, lists[1].Categories)
	assert.Equal(t, types.WatchAuthor, lists[1].Type)

	assert.ErrorIs(t, s.DeleteWatchlist(ctx, "u2", w1.ID), ErrNotFound, "cannot delete another user's watchlist")
	require.NoError(t, s.DeleteWatchlist(ctx, "u1", w1.ID))

	n, err := s.DeleteUserWatchlists(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	lists, err = s.Watchlists(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, lists)

	lists, err = s.Watchlists(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}
