// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/pkg/types"
)

func ids(rows []FeedRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Paper.ID
	}
	return out
}

func TestFeedRows_KeysetIsStrict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	addPaper(t, s, "abc", "2401.00001", base)
	addPaper(t, s, "aaa", "2401.00002", base)
	addPaper(t, s, "zzz", "2401.00003", base.Add(-time.Hour))

	after := &Key{PublishedAt: base, ID: "abc"}
	rows, err := s.FeedRows(ctx, FeedFilter{After: after, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa", "zzz"}, ids(rows))
}

func TestFeedRows_OrderAndFilters(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	p1 := addPaper(t, s, "p1", "2401.00001", base.Add(3*time.Hour), "cs.CL")
	p2 := addPaper(t, s, "p2", "2401.00002", base.Add(2*time.Hour), "cs.CV", "cs.LG")
	p3 := addPaper(t, s, "p3", "2401.00003", base.Add(1*time.Hour), "cs.LG")

	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{
		PaperID: p1.ID, CodeURLs: []string{"https://github.com/a/b"}, PrimaryRepo: "a/b",
		Stars: intP(12), HasWeights: boolP(true),
	}))
	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{
		PaperID: p2.ID, CodeURLs: []string{"https://github.com/c/d"}, HasWeights: boolP(false),
		CreatedAt: base,
	}))
	// A later record without code replaces p2's earlier one.
	require.NoError(t, s.InsertEnrichment(ctx, &types.EnrichmentRecord{PaperID: p2.ID, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.InsertExtraction(ctx, &types.StructuredExtraction{PaperID: p3.ID, Benchmarks: []string{"GLUE"}}))
	require.NoError(t, s.UpsertScore(ctx, types.ScoreRecord{PaperID: p1.ID, Score: types.Score{Global: 0.5}}))

	rows, err := s.FeedRows(ctx, FeedFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids(rows))
	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, 0.5, rows[0].Score.Global, 1e-9)
	assert.Nil(t, rows[1].Score)
	assert.Equal(t, "a/b", rows[0].PrimaryRepo)
	assert.Equal(t, 12, *rows[0].Stars)

	tests := []struct {
		name   string
		filter FeedFilter
		want   []string
	}{
		{"categories", FeedFilter{Categories: []string{"cs.LG"}}, []string{"p2", "p3"}},
		{"code only uses latest row", FeedFilter{CodeOnly: true}, []string{"p1"}},
		{"has weights", FeedFilter{HasWeights: true}, []string{"p1"}},
		{"with benchmarks", FeedFilter{WithBenchmarks: true}, []string{"p3"}},
		{"window", FeedFilter{From: base.Add(90 * time.Minute), To: base.Add(150 * time.Minute)}, []string{"p2"}},
		{"limit", FeedFilter{}, []string{"p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.filter
			f.Limit = 10
			if tt.name == "limit" {
				f.Limit = 1
			}
			rows, err := s.FeedRows(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}
