// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-radar/internal/logging"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "  ak_abc123  \n")
				writeFile(t, dir, "github-token", "ghp_xyz789\n")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_abc123",
				"github-token":      "ghp_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "github-token", "ghp_real")
				return dir
			},
			want: map[string]string{
				"github-token": "ghp_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestMergeDotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "ANTHROPIC_API_KEY=from-env-file\nGITHUB_TOKEN=ghp_env\nEMPTY=\n")

	got := map[string]string{"github-token": "ghp_dir"}
	require.NoError(t, MergeDotEnv(got, filepath.Join(dir, ".env")))

	assert.Equal(t, "from-env-file", got[AnthropicAPIKey])
	assert.Equal(t, "ghp_dir", got[GitHubToken], "secrets directory wins over .env")
	_, hasEmpty := got["empty"]
	assert.False(t, hasEmpty)
}

func TestMergeDotEnvMissingFile(t *testing.T) {
	got := map[string]string{}
	require.NoError(t, MergeDotEnv(got, filepath.Join(t.TempDir(), ".env")))
	assert.Empty(t, got)
}

func TestLookupPrefersEnvironment(t *testing.T) {
	loaded := map[string]string{GitHubToken: "from-file"}
	assert.Equal(t, "from-file", Lookup(loaded, GitHubToken))

	t.Setenv("GITHUB_TOKEN", "from-env")
	assert.Equal(t, "from-env", Lookup(loaded, GitHubToken))
	assert.Equal(t, "GITHUB_TOKEN", EnvName(GitHubToken))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDanglingSymlinkLogsWarning(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "warn", Format: "json", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "github-token")))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"good-key": "value123"}, got)

	out := buf.String()
	assert.Contains(t, out, `"component":"secrets"`)
	assert.Contains(t, out, `"secret":"github-token"`)
	assert.Contains(t, out, "could not read secret")
}
