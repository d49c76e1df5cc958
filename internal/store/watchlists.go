// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// CreateWatchlist stores w for w.UserID, assigning its id and creation time
// when they are empty.
func (s *Store) CreateWatchlist(ctx context.Context, w *types.Watchlist) error {
	if w.UserID == "" {
		return fmt.Errorf("watchlist without user")
	}
	s.stamp(&w.ID, &w.CreatedAt)
	if w.Categories == nil {
		w.Categories = []string{}
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO watchlists (id, user_id, type, name, terms, categories, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, string(w.Type), w.Name, toJSON(w.Terms), toJSON(w.Categories), formatTime(w.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("watchlist %s: %w", w.ID, ErrConflict)
		}
		return fmt.Errorf("inserting watchlist: %w", err)
	}
	return nil
}

// Watchlists returns the watchlists of a user, oldest first.
func (s *Store) Watchlists(ctx context.Context, userID string) ([]types.Watchlist, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, type, name, terms, categories, created_at
		FROM watchlists WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying watchlists: %w", err)
	}
	defer rows.Close()

	lists := []types.Watchlist{}
	for rows.Next() {
		var (
			w                 types.Watchlist
			typ, createdAt    string
			terms, categories sql.NullString
		)
		if err := rows.Scan(&w.ID, &w.UserID, &typ, &w.Name, &terms, &categories, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning watchlist: %w", err)
		}
		w.Type = types.WatchlistType(typ)
		if w.Terms, err = fromJSON[string](terms); err != nil {
			return nil, err
		}
		if w.Categories, err = fromJSON[string](categories); err != nil {
			return nil, err
		}
		if w.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		lists = append(lists, w)
	}
	return lists, rows.Err()
}

// DeleteWatchlist removes one watchlist owned by userID. A watchlist owned
// by someone else is reported as not found.
func (s *Store) DeleteWatchlist(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting watchlist %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("watchlist %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteUserWatchlists removes every watchlist of a user and returns how
// many were removed. It is the account-deletion hook.
func (s *Store) DeleteUserWatchlists(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting watchlists of %s: %w", userID, err)
	}
	return res.RowsAffected()
}
