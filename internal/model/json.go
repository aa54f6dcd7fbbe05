package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// The wire form of a listing uses the canonical column names: price is a
// plain number or null, the coordinate pair is flattened into lat/lon, and
// timestamps are RFC 3339 text with "" for never-set. This is the mapping
// the save contract accepts, so a consumer can read a dataset row and post
// it back unchanged.

// MarshalJSON renders a known price as a plain number and an unknown price
// as null, matching the dataset file's empty-cell convention.
func (p Price) MarshalJSON() ([]byte, error) {
	if !p.Known {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, p.Value, 10), nil
}

// UnmarshalJSON accepts a plain number, a numeric string, or null. Anything
// else decodes as the unknown price; a malformed price never rejects the
// record it belongs to.
func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Price{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		if f < 0 {
			*p = Price{}
			return nil
		}
		*p = KnownPrice(int64(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && v >= 0 {
			*p = KnownPrice(int64(v))
			return nil
		}
	}

	*p = Price{}
	return nil
}

type listingJSON struct {
	Title       string   `json:"title"`
	Price       Price    `json:"price"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	ImageURL    string   `json:"image_url"`
	Source      Source   `json:"source"`
	URL         string   `json:"url"`
	FetchedAt   string   `json:"fetched_at"`
}

func (l Listing) wire() listingJSON {
	out := listingJSON{
		Title:       l.Title,
		Price:       l.Price,
		Address:     l.Address,
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Source:      l.Source,
		URL:         l.URL,
	}
	if l.Location.Valid {
		lat, lon := l.Location.Lat, l.Location.Lon
		out.Lat, out.Lon = &lat, &lon
	}
	if !l.FetchedAt.IsZero() {
		out.FetchedAt = l.FetchedAt.UTC().Format(time.RFC3339)
	}
	return out
}

func fromWire(in listingJSON) Listing {
	l := Listing{
		Title:       in.Title,
		Price:       in.Price,
		Address:     in.Address,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Source:      in.Source,
		URL:         in.URL,
	}
	if in.Lat != nil && in.Lon != nil {
		l.Location = NewCoordinates(*in.Lat, *in.Lon)
	}
	if in.FetchedAt != "" {
		if ts, err := time.Parse(time.RFC3339, in.FetchedAt); err == nil {
			l.FetchedAt = ts
		}
	}
	return l
}

func (l Listing) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.wire())
}

// UnmarshalJSON decodes the canonical mapping. Unknown fields are ignored,
// missing fields default to their absent states, and a partial coordinate
// pair loads as no location.
func (l *Listing) UnmarshalJSON(data []byte) error {
	var in listingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*l = fromWire(in)
	return nil
}

type favouriteJSON struct {
	listingJSON
	SavedAt string `json:"saved_at"`
}

func (f Favourite) MarshalJSON() ([]byte, error) {
	out := favouriteJSON{listingJSON: f.Listing.wire()}
	if !f.SavedAt.IsZero() {
		out.SavedAt = f.SavedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(out)
}

func (f *Favourite) UnmarshalJSON(data []byte) error {
	var in favouriteJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	f.Listing = fromWire(in.listingJSON)
	f.SavedAt = time.Time{}
	if in.SavedAt != "" {
		if ts, err := time.Parse(time.RFC3339, in.SavedAt); err == nil {
			f.SavedAt = ts
		}
	}
	return nil
}
