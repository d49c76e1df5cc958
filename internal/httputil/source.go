// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds one external call, retries included.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent is sent when a source has no explicit User-Agent.
	DefaultUserAgent = "paper-radar/0.1"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// ErrCircuitOpen is returned while a source's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit open")

// StatusError reports a non-success HTTP status from a source.
type StatusError struct {
	Source     string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Source, e.StatusCode)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Response is a fully read HTTP response. Bodies are read inside the call's
// timeout so callers never hold a live connection.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Source is one external system. Every call gets its own timeout, waits on
// the source's rate limiter, and runs through the source's circuit breaker.
// 429 and 5xx responses that survive the retries are returned as
// *StatusError and count against the breaker; other statuses are returned
// as a Response for the caller to interpret.
type Source struct {
	name        string
	client      *http.Client
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*Response]
	timeout     time.Duration
	userAgent   string
	maxAttempts int
}

// SourceOption configures a Source.
type SourceOption func(*sourceSettings)

type sourceSettings struct {
	client      *http.Client
	limit       rate.Limit
	burst       int
	timeout     time.Duration
	userAgent   string
	maxAttempts int
	failures    uint32
	openFor     time.Duration
}

// WithHTTPClient sets the HTTP client (tests pass httptest clients).
func WithHTTPClient(c *http.Client) SourceOption {
	return func(s *sourceSettings) { s.client = c }
}

// WithRate sets the steady request rate and burst for the source.
func WithRate(perSecond float64, burst int) SourceOption {
	return func(s *sourceSettings) {
		s.limit = rate.Limit(perSecond)
		s.burst = burst
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) SourceOption {
	return func(s *sourceSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) SourceOption {
	return func(s *sourceSettings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithMaxAttempts sets the number of attempts per call, first included.
func WithMaxAttempts(n int) SourceOption {
	return func(s *sourceSettings) { s.maxAttempts = n }
}

// WithBreaker opens the circuit after failures consecutive failed calls and
// keeps it open for openFor before probing again.
func WithBreaker(failures uint32, openFor time.Duration) SourceOption {
	return func(s *sourceSettings) {
		s.failures = failures
		s.openFor = openFor
	}
}

// NewSource creates a Source with defaults: 15s timeout, 2 requests/second
// with burst 1, 3 attempts, and a breaker that opens after 5 consecutive
// failures for 30s.
func NewSource(name string, opts ...SourceOption) *Source {
	st := sourceSettings{
		client:      &http.Client{},
		limit:       2,
		burst:       1,
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		failures:    5,
		openFor:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(&st)
	}

	failures := st.failures
	breaker := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     st.openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// A cancelled caller says nothing about the source's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Source{
		name:        name,
		client:      st.client,
		limiter:     rate.NewLimiter(st.limit, st.burst),
		breaker:     breaker,
		timeout:     st.timeout,
		userAgent:   st.userAgent,
		maxAttempts: st.maxAttempts,
	}
}

// Name returns the source name used in errors, logs and metrics.
func (s *Source) Name() string { return s.name }

// Get issues a GET request with the given extra headers.
func (s *Source) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return s.Do(ctx, req)
}

// Do sends req under the source's timeout, rate limit and breaker.
func (s *Source) Do(ctx context.Context, req *http.Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w", s.name, err)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.breaker.Execute(func() (*Response, error) {
		return s.do(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w", s.name, ErrCircuitOpen)
	}
	return resp, err
}

func (s *Source) do(ctx context.Context, req *http.Request) (*Response, error) {
	resp, err := DoWithRetry(ctx, s.client, req, s.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", s.name, err)
	}
	defer resp.Body.Close()

	if retryable(resp.StatusCode) {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Source: s.name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s reading body: %w", s.name, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
