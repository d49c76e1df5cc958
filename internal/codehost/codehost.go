// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codehost fetches repository metadata and READMEs from the GitHub
// REST API.
package codehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paper-radar/internal/httputil"
)

// apiBaseURL is the GitHub API root. Declared as a var so tests can
// substitute an httptest server.
var apiBaseURL = "https://api.github.com"

// Errors.
var (
	ErrNotFound     = errors.New("repository not found")
	ErrRateLimited  = errors.New("GitHub API rate limit exceeded")
	ErrUnauthorized = errors.New("GitHub API authentication failed")
)

// Repo is the subset of repository metadata paper-radar uses.
type Repo struct {
	FullName      string
	HTMLURL       string
	Description   string
	Stars         int
	License       *string
	Archived      bool
	DefaultBranch string
	PushedAt      time.Time
}

// Client is a GitHub API client. The zero value is not usable; call NewClient.
type Client struct {
	source *httputil.Source
	token  string
}

// NewClient creates a client. token may be empty for unauthenticated use,
// which GitHub limits to 60 requests per hour.
func NewClient(token string, opts ...httputil.SourceOption) *Client {
	opts = append([]httputil.SourceOption{httputil.WithRate(1, 2)}, opts...)
	return &Client{source: httputil.NewSource("github", opts...), token: token}
}

// reservedOwners are github.com path prefixes that are not user or
// organization names.
var reservedOwners = map[string]bool{
	"about": true, "apps": true, "collections": true, "contact": true,
	"enterprise": true, "explore": true, "features": true, "login": true,
	"marketplace": true, "orgs": true, "pricing": true, "search": true,
	"settings": true, "site": true, "sponsors": true, "topics": true,
	"trending": true, "users": true,
}

var repoURLPattern = regexp.MustCompile(`^(?:https?:)?//(?:www\.)?github\.com/([A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)/([A-Za-z0-9_.-]+)`)

// ParseRepo extracts owner and repository name from a github.com URL.
// Paths below the repository (tree, blob, issues) are ignored and a .git
// suffix is dropped.
func ParseRepo(rawURL string) (owner, name string, ok bool) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", "", false
	}
	owner = m[1]
	name = strings.TrimSuffix(m[2], ".git")
	if reservedOwners[strings.ToLower(owner)] || name == "" || name == "." || name == ".." {
		return "", "", false
	}
	return owner, name, true
}

// repoResponse is the GitHub /repos/{owner}/{repo} payload.
type repoResponse struct {
	FullName        string    `json:"full_name"`
	HTMLURL         string    `json:"html_url"`
	Description     string    `json:"description"`
	StargazersCount int       `json:"stargazers_count"`
	Archived        bool      `json:"archived"`
	DefaultBranch   string    `json:"default_branch"`
	PushedAt        time.Time `json:"pushed_at"`
	License         *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

// Repo fetches repository metadata.
func (c *Client) Repo(ctx context.Context, owner, name string) (Repo, error) {
	resp, err := c.get(ctx, repoPath(owner, name), "application/vnd.github+json")
	if err != nil {
		return Repo{}, err
	}

	var r repoResponse
	if err := json.Unmarshal(resp.Body, &r); err != nil {
		return Repo{}, fmt.Errorf("decoding GitHub repo response: %w", err)
	}

	repo := Repo{
		FullName:      r.FullName,
		HTMLURL:       r.HTMLURL,
		Description:   r.Description,
		Stars:         r.StargazersCount,
		Archived:      r.Archived,
		DefaultBranch: r.DefaultBranch,
		PushedAt:      r.PushedAt,
	}
	if r.License != nil {
		lic := r.License.SPDXID
		if lic == "" || lic == "NOASSERTION" {
			lic = r.License.Name
		}
		if lic != "" {
			repo.License = &lic
		}
	}
	return repo, nil
}

// Readme fetches the raw README of the default branch.
func (c *Client) Readme(ctx context.Context, owner, name string) (string, error) {
	resp, err := c.get(ctx, repoPath(owner, name)+"/readme", "application/vnd.github.raw")
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

func repoPath(owner, name string) string {
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
}

func (c *Client) get(ctx context.Context, path, accept string) (*httputil.Response, error) {
	h := http.Header{}
	h.Set("Accept", accept)
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.source.Get(ctx, apiBaseURL+path, h)
	if err != nil {
		if httputil.StatusCode(err) == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return nil, ErrRateLimited
		}
		return nil, ErrUnauthorized
	default:
		return nil, &httputil.StatusError{Source: "github", StatusCode: resp.StatusCode}
	}
}
