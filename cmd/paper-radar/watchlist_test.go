// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

const sampleWatchlists = `
watchlists:
  - type: Keyword
    name: " Retrieval "
    terms: [retrieval, "  ", RAG]
  - type: author
    name: People
    terms: [Jane Doe]
    categories: [cs.CL]
    id: ignored
`

func TestParseWatchlistFile(t *testing.T) {
	ws, err := parseWatchlistFile([]byte(sampleWatchlists))
	require.NoError(t, err)
	require.Len(t, ws, 2)

	assert.Equal(t, types.WatchKeyword, ws[0].Type)
	assert.Equal(t, "Retrieval", ws[0].Name)
	assert.Equal(t, []string{"retrieval", "RAG"}, ws[0].Terms)
	assert.Empty(t, ws[1].ID)
	assert.Equal(t, []string{"cs.CL"}, ws[1].Categories)
}

func TestParseWatchlistFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "watchlists: [", "parsing"},
		{"bad type", "watchlists:\n  - {type: venue, name: x, terms: [a]}", "type: oneof"},
		{"no terms", "watchlists:\n  - {type: keyword, name: x, terms: [' ']}", "terms: min"},
		{"no name", "watchlists:\n  - {type: keyword, terms: [a]}", "watchlist 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWatchlistFile([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportExportWatchlists(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	ws, err := parseWatchlistFile([]byte(sampleWatchlists))
	require.NoError(t, err)
	n, err := importWatchlists(ctx, st, "u1", ws, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := st.Watchlists(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Retrieval", stored[0].Name)
	assert.Equal(t, "People", stored[1].Name)

	var buf bytes.Buffer
	require.NoError(t, writeWatchlistFile(&buf, stored))
	assert.NotContains(t, buf.String(), "user_id")

	back, err := parseWatchlistFile(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, stored[0].Terms, back[0].Terms)
	assert.Equal(t, stored[1].Terms, back[1].Terms)
	assert.Equal(t, types.WatchAuthor, back[1].Type)
}
