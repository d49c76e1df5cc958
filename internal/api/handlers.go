// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/paper-radar/internal/arxivid"
	"github.com/pdiddy/paper-radar/internal/enrich"
	"github.com/pdiddy/paper-radar/internal/feed"
	"github.com/pdiddy/paper-radar/internal/store"
	"github.com/pdiddy/paper-radar/pkg/types"
)

const maxBodyBytes = 1 << 20

func (s *Server) getFeed(w http.ResponseWriter, r *http.Request) {
	q, err := parseFeedQuery(r)
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	q.UserID = r.Header.Get(UserHeader)

	page, err := s.deps.Feed.Page(r.Context(), q)
	switch {
	case errors.Is(err, feed.ErrInvalidQuery):
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case err != nil:
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to load feed", err)
	default:
		respondJSON(w, s.deps.Logger, http.StatusOK, page)
	}
}

func parseFeedQuery(r *http.Request) (feed.Query, error) {
	v := r.URL.Query()
	view, err := feed.ParseView(v.Get("view"))
	if err != nil {
		return feed.Query{}, err
	}
	q := feed.Query{View: view, Cursor: v.Get("cursor")}
	for _, c := range strings.Split(v.Get("categories"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"codeOnly", &q.CodeOnly},
		{"hasWeights", &q.HasWeights},
		{"withBenchmarks", &q.WithBenchmarks},
	}
	for _, f := range flags {
		raw := v.Get(f.name)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return feed.Query{}, errors.New(f.name + " must be a boolean")
		}
		*f.dst = b
	}

	if raw := v.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return feed.Query{}, errors.New("limit must be an integer")
		}
		q.Limit = feed.ClampLimit(n)
	}
	return q, nil
}

// enrichRequest is the body of POST /api/enrich. IDs is a comma-separated
// identifier batch; when empty the window fields select the candidates.
type enrichRequest struct {
	IDs          string `json:"ids"`
	Limit        int    `json:"limit"`
	LookbackDays int    `json:"lookbackDays"`
	OnlyMissing  bool   `json:"onlyMissing"`
}

func (s *Server) postEnrich(w http.ResponseWriter, r *http.Request) {
	if s.deps.Enricher == nil {
		respondError(w, s.deps.Logger, http.StatusServiceUnavailable, CodeUnavailable, "enrichment is not configured", nil)
		return
	}
	var req enrichRequest
	if err := decodeBody(r, &req, true); err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	ids, err := arxivid.ParseList(req.IDs)
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}

	sel := enrich.Selection{IDs: ids, Limit: req.Limit, LookbackDays: req.LookbackDays, OnlyMissing: req.OnlyMissing}
	sum, err := s.deps.Enricher.Run(r.Context(), sel)
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to select candidates", err)
		return
	}
	respondJSON(w, s.deps.Logger, http.StatusOK, sum)
}

func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	id, err := arxivid.Canonical(chi.URLParam(r, "arxivID"))
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	d, err := feed.Detail(r.Context(), s.deps.Store, id, r.Header.Get(UserHeader), s.deps.Scoring, s.deps.Now())
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, s.deps.Logger, http.StatusNotFound, CodeNotFound, "paper "+id+" not found", nil)
	case err != nil:
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to load paper", err)
	default:
		respondJSON(w, s.deps.Logger, http.StatusOK, d)
	}
}

func (s *Server) listWatchlists(w http.ResponseWriter, r *http.Request) {
	ws, err := s.deps.Store.Watchlists(r.Context(), r.Header.Get(UserHeader))
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to load watchlists", err)
		return
	}
	respondJSON(w, s.deps.Logger, http.StatusOK, map[string]any{"items": ws})
}

func (s *Server) createWatchlist(w http.ResponseWriter, r *http.Request) {
	var wl types.Watchlist
	if err := decodeBody(r, &wl, false); err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	wl, err := ValidateWatchlist(wl)
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusBadRequest, CodeValidation, err.Error(), nil)
		return
	}
	wl.ID = ""
	wl.CreatedAt = s.deps.Now()
	wl.UserID = r.Header.Get(UserHeader)
	if err := s.deps.Store.CreateWatchlist(r.Context(), &wl); err != nil {
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to create watchlist", err)
		return
	}
	respondJSON(w, s.deps.Logger, http.StatusCreated, wl)
}

func (s *Server) deleteWatchlist(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Store.DeleteWatchlist(r.Context(), r.Header.Get(UserHeader), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, s.deps.Logger, http.StatusNotFound, CodeNotFound, "watchlist not found", nil)
	case err != nil:
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to delete watchlist", err)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID != r.Header.Get(UserHeader) {
		respondError(w, s.deps.Logger, http.StatusForbidden, CodeForbidden, "cannot delete another user's data", nil)
		return
	}
	n, err := s.deps.Store.DeleteUserWatchlists(r.Context(), userID)
	if err != nil {
		respondError(w, s.deps.Logger, http.StatusInternalServerError, CodeInternal, "failed to delete user data", err)
		return
	}
	s.deps.Logger.Info().Str("user_id", userID).Int64("watchlists", n).Msg("user data deleted")
	respondJSON(w, s.deps.Logger, http.StatusOK, map[string]int64{"deletedWatchlists": n})
}

// CleanWatchlist trims the name, terms and categories of w and drops
// empty entries, so whitespace-only terms fail validation as missing.
func CleanWatchlist(w types.Watchlist) types.Watchlist {
	w.Name = strings.TrimSpace(w.Name)
	w.Type = types.WatchlistType(strings.ToLower(strings.TrimSpace(string(w.Type))))
	w.Terms = cleanList(w.Terms)
	w.Categories = cleanList(w.Categories)
	return w
}

// ValidateWatchlist cleans w and checks it against the watchlist rules. The
// error message lists every failing field.
func ValidateWatchlist(w types.Watchlist) (types.Watchlist, error) {
	w = CleanWatchlist(w)
	if err := validate.Struct(w); err != nil {
		return w, errors.New(validationMessage(err))
	}
	return w, nil
}

func cleanList(in []string) []string {
	out := []string{}
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// decodeBody reads a JSON body. Unknown fields are rejected; an empty body
// is accepted only when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		if allowEmpty {
			return nil
		}
		return errors.New("request body is required")
	}
	if err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}
