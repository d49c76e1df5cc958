// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-radar/pkg/types"
)

func testSubject() Subject {
	return Subject{
		Title:      "Sparse Mixture-of-Experts for Long Context Retrieval",
		Abstract:   "We evaluate on MMLU and LongBench. Work done at DeepMind.",
		Authors:    []string{"Ada  Lovelace", "Alan Turing"},
		Categories: []string{"cs.CL", "cs.LG"},
		Benchmarks: []string{"HellaSwag"},
	}
}

func TestMatches(t *testing.T) {
	s := testSubject()

	tests := []struct {
		name string
		w    types.Watchlist
		want bool
	}{
		{"keyword whole word", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"retrieval"}}, true},
		{"keyword case-insensitive", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"LONG CONTEXT"}}, true},
		{"keyword with hyphen neighbours", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"experts"}}, true},
		{"keyword not a prefix", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"retriev"}}, false},
		{"keyword not inside a word", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"parse"}}, false},
		{"institution", types.Watchlist{Type: types.WatchInstitution, Terms: []string{"deepmind"}}, true},
		{"author normalized", types.Watchlist{Type: types.WatchAuthor, Terms: []string{"ada lovelace"}}, true},
		{"author partial does not match", types.Watchlist{Type: types.WatchAuthor, Terms: []string{"Lovelace"}}, false},
		{"benchmark extracted", types.Watchlist{Type: types.WatchBenchmark, Terms: []string{"hellaswag"}}, true},
		{"benchmark in text", types.Watchlist{Type: types.WatchBenchmark, Terms: []string{"MMLU"}}, true},
		{"benchmark missing", types.Watchlist{Type: types.WatchBenchmark, Terms: []string{"GSM8K"}}, false},
		{"empty terms", types.Watchlist{Type: types.WatchKeyword}, false},
		{"blank term", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"   "}}, false},
		{"category intersects", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"retrieval"}, Categories: []string{"cs.LG"}}, true},
		{"category excludes", types.Watchlist{Type: types.WatchKeyword, Terms: []string{"retrieval"}, Categories: []string{"cs.CV"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(s, tt.w))
		})
	}
}

func TestMatches_CategoryRestrictionIgnoresTerms(t *testing.T) {
	s := testSubject()
	w := types.Watchlist{
		Type:       types.WatchKeyword,
		Terms:      []string{"retrieval", "MMLU", "experts", "sparse"},
		Categories: []string{"astro-ph", "q-bio.NC"},
	}
	assert.False(t, Matches(s, w))
	assert.Zero(t, Points(s, []types.Watchlist{w}, DefaultWeights()))
}

func TestMatches_PaperWithoutCategories(t *testing.T) {
	s := testSubject()
	s.Categories = nil
	w := types.Watchlist{Type: types.WatchKeyword, Terms: []string{"retrieval"}, Categories: []string{"cs.CV"}}
	assert.True(t, Matches(s, w))
}

func TestPoints(t *testing.T) {
	s := testSubject()
	ws := []types.Watchlist{
		{Type: types.WatchKeyword, Terms: []string{"retrieval", "long context", "diffusion"}},
		{Type: types.WatchAuthor, Terms: []string{"Alan Turing"}},
		{Type: types.WatchBenchmark, Terms: []string{"HellaSwag"}},
		{Type: types.WatchInstitution, Terms: []string{"DeepMind"}},
		{Type: types.WatchKeyword},
	}
	// 2 keywords + 1 author + 1 benchmark + 1 institution.
	assert.InDelta(t, 2*1.0+1.2+1.1+1.0, Points(s, ws, DefaultWeights()), 1e-9)
	assert.Zero(t, Points(s, nil, DefaultWeights()))
}

func TestSubjectOf(t *testing.T) {
	p := types.Paper{Title: "T", Abstract: "A", Authors: []string{"X"}, Categories: []string{"cs.AI"}}
	s := SubjectOf(p, nil)
	assert.Empty(t, s.Benchmarks)

	s = SubjectOf(p, &types.StructuredExtraction{Benchmarks: []string{"ImageNet"}})
	assert.Equal(t, []string{"ImageNet"}, s.Benchmarks)
	assert.Equal(t, "T", s.Title)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ada lovelace", Normalize("  Ada\t Lovelace \n"))
	assert.Equal(t, "", Normalize("   "))
}
