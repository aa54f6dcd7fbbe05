// Package provider holds the source adapters, one per external listings
// site. Each adapter fetches raw pages and parses them into provider-native
// records; reconciliation into the canonical schema happens downstream.
package provider

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/reno-works/listings-cli/internal/model"
)

// Provider fetches and parses listings from one external site.
type Provider interface {
	// Name returns the unique registry identifier (e.g. "rightmove").
	Name() string

	// Source returns the provenance label stamped on this provider's
	// listings.
	Source() model.Source

	// Fetch retrieves provider-native records for the query. Records
	// parsed before a failure are returned alongside the error, so partial
	// results are never discarded wholesale.
	Fetch(ctx context.Context, q model.Query) ([]model.Record, error)
}

// Geocoder is the address resolution dependency injected into adapters.
// A single shared instance enforces the global rate budget.
type Geocoder interface {
	Resolve(ctx context.Context, address string) model.Coordinates
}

// Options carries adapter settings shared by all providers.
type Options struct {
	// BaseURL overrides the provider's production endpoint, used in tests.
	BaseURL string
	// CardDelay is the polite pause between listing cards within one
	// provider, so a scrape never hammers the upstream.
	CardDelay time.Duration
}

// sleep pauses for d, returning early if ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// absURL joins a scraped href with the provider base when the href is
// relative.
func absURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}

// setLocation stamps resolved coordinates onto a record. Absent
// coordinates leave the record untouched.
func setLocation(rec model.Record, c model.Coordinates) {
	if !c.Valid {
		return
	}
	rec["lat"] = strconv.FormatFloat(c.Lat, 'f', -1, 64)
	rec["lon"] = strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// slugify turns "Stratford-upon-Avon, UK" into a URL path segment like
// "stratford-upon-avon".
func slugify(location string) string {
	location = strings.ToLower(strings.TrimSpace(location))
	if i := strings.IndexByte(location, ','); i >= 0 {
		location = location[:i]
	}
	var b strings.Builder
	lastDash := false
	for _, r := range location {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
