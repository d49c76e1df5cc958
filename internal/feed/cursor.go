// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/paper-radar/internal/store"
)

// EncodeCursor renders k as "<publishedAt>_<id>", with the timestamp in UTC
// at millisecond precision.
func EncodeCursor(k store.Key) string {
	return k.PublishedAt.UTC().Format(store.TimeLayout) + "_" + k.ID
}

// DecodeCursor parses a cursor produced by EncodeCursor.
func DecodeCursor(s string) (store.Key, error) {
	ts, id, ok := strings.Cut(s, "_")
	if !ok || id == "" {
		return store.Key{}, fmt.Errorf("%w: malformed cursor %q", ErrInvalidQuery, s)
	}
	t, err := time.Parse(store.TimeLayout, ts)
	if err != nil {
		return store.Key{}, fmt.Errorf("%w: malformed cursor time %q", ErrInvalidQuery, ts)
	}
	return store.Key{PublishedAt: t, ID: id}, nil
}
