// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_GetReadsBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Write([]byte("hello"))
	}))
	defer ts.Close()

	src := NewSource("test", WithHTTPClient(ts.Client()), WithRate(1000, 10), WithUserAgent("test-agent"))
	resp, err := src.Get(context.Background(), ts.URL, http.Header{"X-Test": {"yes"}})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "hello", string(resp.Body))
}

func TestSource_4xxIsResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	src := NewSource("test", WithHTTPClient(ts.Client()), WithRate(1000, 10))
	resp, err := src.Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSource_5xxIsStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	src := NewSource("test", WithHTTPClient(ts.Client()), WithRate(1000, 10))
	_, err := src.Get(context.Background(), ts.URL, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestSource_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	src := NewSource("slow", WithHTTPClient(ts.Client()), WithRate(1000, 10),
		WithTimeout(50*time.Millisecond), WithMaxAttempts(1))

	start := time.Now()
	_, err := src.Get(context.Background(), ts.URL, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSource_BreakerOpens(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	src := NewSource("flaky", WithHTTPClient(ts.Client()), WithRate(1000, 10),
		WithMaxAttempts(1), WithBreaker(2, time.Minute))

	for i := 0; i < 2; i++ {
		_, err := src.Get(context.Background(), ts.URL, nil)
		require.Error(t, err)
	}
	_, err := src.Get(context.Background(), ts.URL, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
