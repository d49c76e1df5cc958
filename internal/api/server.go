// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves the feed, paper detail, watchlists and on-demand
// enrichment over HTTP. Authentication happens upstream: the caller's user
// id arrives in the X-User-ID header and is trusted as-is.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-radar/internal/enrich"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/pkg/types"
)

// UserHeader carries the authenticated user id.
const UserHeader = "X-User-ID"

// Store is the persistence the handlers use directly.
type Store interface {
	feed.DetailStore
	CreateWatchlist(ctx context.Context, w *types.Watchlist) error
	DeleteWatchlist(ctx context.Context, userID, id string) error
	DeleteUserWatchlists(ctx context.Context, userID string) (int64, error)
	Ping(ctx context.Context) error
}

// Enricher runs an enrichment batch.
type Enricher interface {
	Run(ctx context.Context, sel enrich.Selection) (types.EnrichSummary, error)
}

// Deps are the collaborators of a Server.
type Deps struct {
	Store    Store
	Feed     *feed.Assembler
	Enricher Enricher
	Scoring  types.ScoringConfig

	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server holds the HTTP handlers.
type Server struct {
	deps Deps
	cfg  types.ServerConfig
}

// New creates a Server.
func New(deps Deps, cfg types.ServerConfig) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	return &Server{deps: deps, cfg: cfg}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RequestsPerMinute, time.Minute))
		}
		r.Get("/feed", s.getFeed)
		r.Post("/enrich", s.postEnrich)
		r.Get("/papers/{arxivID}", s.getPaper)

		r.Route("/watchlists", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", s.listWatchlists)
			r.Post("/", s.createWatchlist)
			r.Delete("/{id}", s.deleteWatchlist)
		})
		r.With(requireUser).Delete("/users/{userID}", s.deleteUser)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.deps.Logger.Info().Str("addr", s.cfg.Addr).Msg("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.deps.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(UserHeader) == "" {
			respondJSON(w, zerolog.Nop(), http.StatusUnauthorized, ErrorBody{Code: CodeUnauthorized, Message: "missing " + UserHeader + " header"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		respondError(w, s.deps.Logger, http.StatusServiceUnavailable, CodeUnavailable, "database unavailable", err)
		return
	}
	respondJSON(w, s.deps.Logger, http.StatusOK, map[string]string{"status": "ok"})
}
