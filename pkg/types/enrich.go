// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EnrichFlags are the optional steps of an enrichment run.
type EnrichFlags struct {
	Extract         bool `json:"extract" yaml:"extract"`
	Readme          bool `json:"readme" yaml:"readme"`
	BenchmarkLookup bool `json:"benchmarkLookup" yaml:"benchmark_lookup"`
}

// EnrichItem is the outcome for one paper. Info is a short description of
// what was found when OK; Error is the failure message otherwise.
type EnrichItem struct {
	ID    string `json:"id" yaml:"id"`
	OK    bool   `json:"ok" yaml:"ok"`
	Info  string `json:"info,omitempty" yaml:"info,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// EnrichSummary is the report of one enrichment batch. Items follow the
// order of the candidate list.
type EnrichSummary struct {
	StartedAt    time.Time    `json:"startedAt" yaml:"started_at"`
	FinishedAt   time.Time    `json:"finishedAt" yaml:"finished_at"`
	Limit        int          `json:"limit" yaml:"limit"`
	LookbackDays int          `json:"lookbackDays" yaml:"lookback_days"`
	Flags        EnrichFlags  `json:"flags" yaml:"flags"`
	Processed    int          `json:"processed" yaml:"processed"`
	Items        []EnrichItem `json:"items" yaml:"items"`
}

// Failed counts the items that did not succeed.
func (s EnrichSummary) Failed() int {
	n := 0
	for _, it := range s.Items {
		if !it.OK {
			n++
		}
	}
	return n
}
