// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxivid parses arXiv identifiers into their canonical,
// version-stripped base form. The canonical form is the join key between
// a paper and everything derived from it.
package arxivid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid is returned for input that is not an arXiv identifier.
var ErrInvalid = errors.New("invalid arXiv identifier")

var (
	// newStyle matches "2301.07041" and "2301.07041v2".
	newStyle = regexp.MustCompile(`^(\d{4}\.\d{4,5})(v\d+)?$`)

	// oldStyle matches "hep-th/9901001", "math.GT/0309136" and versioned forms.
	oldStyle = regexp.MustCompile(`^([a-z][a-z\-]*(?:\.[A-Z]{2})?/\d{7})(v\d+)?$`)
)

// urlPrefixes are stripped before matching so that abs and pdf links parse.
var urlPrefixes = []string{
	"https://arxiv.org/abs/",
	"http://arxiv.org/abs/",
	"https://arxiv.org/pdf/",
	"http://arxiv.org/pdf/",
	"https://export.arxiv.org/abs/",
	"http://export.arxiv.org/abs/",
}

// Canonical returns the version-stripped identifier for s. It accepts bare
// identifiers, the "arXiv:" prefix, and abs/pdf URLs.
func Canonical(s string) (string, error) {
	id := strings.TrimSpace(s)
	for _, p := range urlPrefixes {
		if strings.HasPrefix(id, p) {
			id = strings.TrimSuffix(strings.TrimPrefix(id, p), ".pdf")
			break
		}
	}
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}

	if m := newStyle.FindStringSubmatch(id); m != nil {
		return m[1], nil
	}
	if m := oldStyle.FindStringSubmatch(id); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalid, s)
}

// StripVersion removes a trailing "vN" from id without validating the rest.
func StripVersion(id string) string {
	id = strings.TrimSpace(id)
	idx := strings.LastIndex(id, "v")
	if idx <= 0 || idx == len(id)-1 {
		return id
	}
	for _, r := range id[idx+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:idx]
}

// ParseList splits a comma-separated identifier batch, canonicalizes every
// entry, and drops duplicates while keeping first-seen order. Empty entries
// are ignored; any malformed entry fails the whole list.
func ParseList(csv string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		id, err := Canonical(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return Dedupe(ids), nil
}

// Dedupe returns ids without repeats, in first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
