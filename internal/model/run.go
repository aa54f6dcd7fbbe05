package model

import (
	"fmt"
	"strings"
	"time"
)

// Query carries the static search parameters handed to every provider.
// Each adapter interprets them in its own terms.
type Query struct {
	Location      string   `json:"location"`
	RadiusMiles   int      `json:"radius_miles"`
	MaxPrice      int64    `json:"max_price"`
	Keywords      []string `json:"keywords"`
	PropertyTypes []string `json:"property_types"`
}

// ProviderOutcome records what a single provider contributed to a run.
type ProviderOutcome struct {
	Source  Source `json:"source"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

// RunResult is the structured outcome of one ingestion run. A zero-listing
// run is still a successful run; Success is false only when no valid output
// file could be produced at all.
type RunResult struct {
	ID        string            `json:"id"`
	StartedAt time.Time         `json:"started_at"`
	Elapsed   time.Duration     `json:"elapsed"`
	Total     int               `json:"total"`
	Written   bool              `json:"written"`
	Success   bool              `json:"success"`
	Providers []ProviderOutcome `json:"providers"`
}

// Summary renders the combined textual log the trigger contract exposes.
func (r *RunResult) Summary() string {
	var b strings.Builder
	for _, p := range r.Providers {
		if p.Error != "" {
			fmt.Fprintf(&b, "%s: failed (%s)\n", p.Source, p.Error)
			continue
		}
		fmt.Fprintf(&b, "%s: %d listings\n", p.Source, p.Records)
	}
	fmt.Fprintf(&b, "total: %d listings in %s", r.Total, r.Elapsed.Round(time.Millisecond))
	if !r.Written {
		b.WriteString(" (dataset left unchanged)")
	}
	return b.String()
}
