// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials from a directory of plain-text files
// and from an optional .env file. Each file in the directory represents one secret:
// the filename is the key name and the file contents (trimmed) are the value.
//
// Supported keys: anthropic-api-key, github-token.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/paper-radar/internal/logging"
)

// Well-known secret names.
const (
	AnthropicAPIKey = "anthropic-api-key"
	GitHubToken     = "github-token"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log := logging.Component("secrets")
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// MergeDotEnv adds the variables of a .env file to secrets, converting
// ANTHROPIC_API_KEY style names to anthropic-api-key. Values already in
// secrets win. A missing file is not an error.
func MergeDotEnv(secrets map[string]string, path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	for k, v := range vars {
		name := strings.ToLower(strings.ReplaceAll(k, "_", "-"))
		v = strings.TrimSpace(v)
		if _, ok := secrets[name]; ok || v == "" {
			continue
		}
		secrets[name] = v
	}
	return nil
}

// EnvName returns the environment variable consulted for a secret name,
// e.g. GITHUB_TOKEN for github-token.
func EnvName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Lookup returns the secret from the process environment, falling back to
// the loaded map.
func Lookup(secrets map[string]string, name string) string {
	if v := strings.TrimSpace(os.Getenv(EnvName(name))); v != "" {
		return v
	}
	return secrets[name]
}
