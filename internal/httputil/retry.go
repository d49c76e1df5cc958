// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP plumbing shared by every external
// source: bounded retries with backoff, per-source timeouts, rate limits and
// circuit breakers.
package httputil

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var RetryBaseDelay = 700 * time.Millisecond

// MaxRetryAfter caps a server-supplied Retry-After hint.
var MaxRetryAfter = 30 * time.Second

const defaultMaxAttempts = 3

// DoWithRetry executes an HTTP request, retrying transient failures.
//
// HTTP 429 waits for the server's Retry-After hint when present and falls
// back to exponential backoff with jitter otherwise. HTTP 5xx and network
// errors use the same backoff. Any other status is returned immediately.
// The delay starts at RetryBaseDelay and doubles per attempt, plus up to half
// of RetryBaseDelay of jitter.
//
// When maxAttempts is 0 the default (3) is used. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After the last
// attempt the final 429 or 5xx response is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	for attempt := 0; ; attempt++ {
		last := attempt >= maxAttempts-1

		r, err := cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(r)
		if err != nil {
			if last || ctx.Err() != nil {
				return nil, err
			}
			if werr := wait(ctx, backoff(attempt)); werr != nil {
				return nil, werr
			}
			continue
		}

		if !retryable(resp.StatusCode) || last {
			return resp, nil
		}

		delay := backoff(attempt)
		if resp.StatusCode == http.StatusTooManyRequests {
			if hint, ok := RetryAfter(resp.Header, time.Now()); ok {
				delay = hint
			}
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
	if half := int64(RetryBaseDelay / 2); half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryAfter parses a Retry-After header given either as delta seconds or
// as an HTTP date. The result is capped at MaxRetryAfter.
func RetryAfter(h http.Header, now time.Time) (time.Duration, bool) {
	v := h.Get("Retry-After")
	if v == "" {
		return 0, false
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
		if d < 0 {
			d = 0
		}
	} else {
		return 0, false
	}
	if d > MaxRetryAfter {
		d = MaxRetryAfter
	}
	return d, true
}

// cloneRequest copies req onto ctx and rewinds its body so it can be sent again.
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	r := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		r.Body = body
	}
	return r, nil
}
