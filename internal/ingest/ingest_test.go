// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/internal/httputil"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const atomFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title>ArXiv Query</title>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v2</id>
    <updated>2024-01-03T10:00:00Z</updated>
    <published>2024-01-01T09:30:00Z</published>
    <title>Sparse Attention
      at Scale</title>
    <summary>  We study sparse
      attention.  </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2401.00001v2" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v2" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>not-an-id</id>
    <title>Broken</title>
  </entry>
</feed>`

func TestClient_Recent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "search_query=cat:cs.LG+OR+cat:cs.CL")
		assert.Contains(t, r.URL.RawQuery, "max_results=5")
		w.Write([]byte(atomFeed))
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := NewClient(httputil.WithHTTPClient(ts.Client()), httputil.WithRate(1000, 10))
	papers, err := c.Recent(context.Background(), []string{"cs.LG", "cs.CL"}, 5)
	require.NoError(t, err)
	require.Len(t, papers, 1)

	p := papers[0]
	assert.Equal(t, "2401.00001", p.ArxivID)
	assert.Equal(t, "Sparse Attention at Scale", p.Title)
	assert.Equal(t, "We study sparse attention.", p.Abstract)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, p.Authors)
	assert.ElementsMatch(t, []string{"cs.CL", "cs.LG"}, p.Categories)
	assert.Equal(t, "cs.LG", p.PrimaryCategory)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), p.PublishedAt)
	assert.Equal(t, time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), p.UpdatedAt)
}

func TestClient_RecentServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := NewClient(httputil.WithHTTPClient(ts.Client()), httputil.WithRate(1000, 10))
	_, err := c.Recent(context.Background(), nil, 0)
	assert.Equal(t, http.StatusBadRequest, httputil.StatusCode(err))
}

type fakeLister struct {
	papers []types.Paper
	err    error
}

func (f fakeLister) Recent(context.Context, []string, int) ([]types.Paper, error) {
	return f.papers, f.err
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "radar.db"))
	require.NoError(t, err)
	defer st.Close()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := fakeLister{papers: []types.Paper{
		{ArxivID: "2401.00001", Title: "one", PublishedAt: t0, UpdatedAt: t0},
		{ArxivID: "2401.00002", Title: "two", PublishedAt: t0, UpdatedAt: t0},
	}}
	sum, err := Run(ctx, first, st, nil, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Listed: 2, Inserted: 2}, sum)

	second := fakeLister{papers: []types.Paper{
		{ArxivID: "2401.00001", Title: "one v2", PublishedAt: t0, UpdatedAt: t0.Add(time.Hour)},
		{ArxivID: "2401.00002", Title: "two", PublishedAt: t0, UpdatedAt: t0},
	}}
	sum, err = Run(ctx, second, st, nil, 10, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Listed: 2, Updated: 1, Unchanged: 1}, sum)

	p, err := st.PaperByArxivID(ctx, "2401.00001")
	require.NoError(t, err)
	assert.Equal(t, "one v2", p.Title)

	_, err = Run(ctx, fakeLister{err: errors.New("down")}, st, nil, 10, zerolog.Nop())
	assert.Error(t, err)
}
