// Package normalize reconciles provider-native records into the canonical
// listing schema. It is pure: no I/O, and the same record and source always
// produce the same listing.
package normalize

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/reno-works/listings-cli/internal/model"
)

// Normalizer applies alias rules, coercion, and defaulting to provider
// records.
type Normalizer struct {
	rules []Rule
}

// New creates a Normalizer. With no rules given, the built-in table is used.
func New(rules ...Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules}
}

// Normalize maps one provider record into a canonical listing. Every
// canonical field is populated: absent source values become explicit empty
// or absent states, never undefined ones.
func (n *Normalizer) Normalize(rec model.Record, source model.Source, fetchedAt time.Time) model.Listing {
	r := n.reconcile(rec)

	listing := model.Listing{
		Title:       CleanText(r["title"]),
		Price:       CoercePrice(r["price"]),
		Address:     CleanText(r["address"]),
		Description: CleanText(r["description"]),
		ImageURL:    strings.TrimSpace(r["image_url"]),
		Source:      source,
		URL:         strings.TrimSpace(r["url"]),
		FetchedAt:   fetchedAt,
	}

	if lat, lon, ok := parseLatLon(r["lat"], r["lon"]); ok {
		listing.Location = model.NewCoordinates(lat, lon)
	}

	return listing
}

// reconcile applies the alias rules to a copy of the record. A rule fires
// only when the canonical key is not already present, so an existing
// canonical value is never overwritten.
func (n *Normalizer) reconcile(rec model.Record) model.Record {
	r := make(model.Record, len(rec))
	for k, v := range rec {
		r[k] = v
	}
	for _, rule := range n.rules {
		if _, exists := r[rule.To]; exists {
			continue
		}
		if v, ok := r[rule.From]; ok {
			r[rule.To] = v
		}
	}
	return r
}

// CoercePrice strips currency decoration (symbols, thousands separators,
// spaces) and parses a whole-pound price. Anything that is not purely a
// decorated number, including the empty string, becomes the unknown price.
// Unknown is never conflated with zero.
func CoercePrice(raw string) model.Price {
	s := strings.TrimSpace(raw)
	if s == "" {
		return model.Price{}
	}

	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ',' || r == '£' || r == '$' || r == '€' || unicode.IsSpace(r):
			// decoration
		default:
			return model.Price{}
		}
	}
	if digits.Len() == 0 {
		return model.Price{}
	}

	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return model.Price{}
	}
	return model.KnownPrice(v)
}

// CleanText normalizes scraped text to NFC, drops control characters, and
// collapses runs of whitespace.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// parseLatLon parses a coordinate pair. Both halves must parse or the pair
// is absent; a partial coordinate never reaches the schema.
func parseLatLon(latRaw, lonRaw string) (lat, lon float64, ok bool) {
	latRaw = strings.TrimSpace(latRaw)
	lonRaw = strings.TrimSpace(lonRaw)
	if latRaw == "" || lonRaw == "" {
		return 0, 0, false
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr != nil || lonErr != nil {
		return 0, 0, false
	}
	return lat, lon, true
}
