// Package model defines the canonical listing schema shared by the
// ingestion pipeline, the stores, and the serve surface.
package model

import "time"

// Source identifies a listing provider. It is recorded at ingestion time
// and never inferred after the fact.
type Source string

const (
	SourceRightmove   Source = "Rightmove"
	SourceZoopla      Source = "Zoopla"
	SourceOnTheMarket Source = "OnTheMarket"
)

// Record is a provider-native listing as scraped: raw field names mapped to
// raw string values. Field names vary per provider and are reconciled by
// the normalizer.
type Record map[string]string

// Price is an optional listing price in whole pounds. Known=false means the
// source value was absent or unparseable; that state is distinct from a
// price of zero and serializes as an empty cell.
type Price struct {
	Value int64
	Known bool
}

// KnownPrice returns a present price.
func KnownPrice(v int64) Price {
	return Price{Value: v, Known: true}
}

// Coordinates is an optional latitude/longitude pair. The pair is either
// both present (Valid=true) or both absent; partial coordinates do not
// exist in the schema.
type Coordinates struct {
	Lat   float64
	Lon   float64
	Valid bool
}

// NewCoordinates builds a Coordinates value, rejecting out-of-range input.
// Latitude must be within [-90, 90] and longitude within [-180, 180];
// anything else is treated as absent.
func NewCoordinates(lat, lon float64) Coordinates {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Coordinates{}
	}
	return Coordinates{Lat: lat, Lon: lon, Valid: true}
}

// Listing is the unified record produced by the pipeline. Every field is
// always present in the schema; optional values carry explicit absent
// states rather than zero values. The JSON form mirrors the dataset
// columns (see json.go): price as number-or-null, location flattened into
// lat/lon.
type Listing struct {
	Title       string
	Price       Price
	Address     string
	Description string
	Location    Coordinates
	ImageURL    string
	Source      Source
	URL         string
	FetchedAt   time.Time
}

// Columns is the canonical dataset header, in serialization order.
func Columns() []string {
	return []string{"title", "price", "address", "description", "lat", "lon", "image_url", "source", "url", "fetched_at"}
}
