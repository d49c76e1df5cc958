//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func run(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Ingest builds the CLI and lists recent papers into the database.
func Ingest() error {
	mg.Deps(Build)
	return run("ingest")
}

// Enrich builds the CLI and enriches recent papers that were never enriched.
func Enrich() error {
	mg.Deps(Build)
	return run("enrich", "--only-missing", "--lookback-days", "7")
}

// Serve builds the CLI and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return run("serve")
}
