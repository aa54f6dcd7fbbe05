// Package store persists the canonical dataset and the favourites file as
// CSV. Writes replace the whole file through a temp-file rename so readers
// never observe a partial write.
package store

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/reno-works/listings-cli/internal/model"
)

// timeLayout is the on-disk timestamp format.
const timeLayout = time.RFC3339

// listingRow serializes a listing in model.Columns() order. Absent price and
// coordinates become empty cells, never zeroes.
func listingRow(l model.Listing) []string {
	price := ""
	if l.Price.Known {
		price = strconv.FormatInt(l.Price.Value, 10)
	}
	lat, lon := "", ""
	if l.Location.Valid {
		lat = strconv.FormatFloat(l.Location.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(l.Location.Lon, 'f', -1, 64)
	}
	fetched := ""
	if !l.FetchedAt.IsZero() {
		fetched = l.FetchedAt.UTC().Format(timeLayout)
	}
	return []string{
		l.Title, price, l.Address, l.Description,
		lat, lon, l.ImageURL, string(l.Source), l.URL, fetched,
	}
}

// rowIndex maps a file header to column positions so files with reordered or
// extra columns still load. Unknown columns are ignored.
func rowIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// cell returns the named column from a row, or "" when the column is missing.
func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// parseListing rebuilds a listing from a CSV row. Malformed optional values
// load as absent rather than failing the whole file.
func parseListing(row []string, idx map[string]int) model.Listing {
	l := model.Listing{
		Title:       cell(row, idx, "title"),
		Address:     cell(row, idx, "address"),
		Description: cell(row, idx, "description"),
		ImageURL:    cell(row, idx, "image_url"),
		Source:      model.Source(cell(row, idx, "source")),
		URL:         cell(row, idx, "url"),
	}
	if raw := cell(row, idx, "price"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			l.Price = model.KnownPrice(v)
		}
	}
	latRaw, lonRaw := cell(row, idx, "lat"), cell(row, idx, "lon")
	if latRaw != "" && lonRaw != "" {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lon, errLon := strconv.ParseFloat(lonRaw, 64)
		if errLat == nil && errLon == nil {
			l.Location = model.NewCoordinates(lat, lon)
		}
	}
	if raw := cell(row, idx, "fetched_at"); raw != "" {
		if ts, err := time.Parse(timeLayout, raw); err == nil {
			l.FetchedAt = ts
		}
	}
	return l
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func writeAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrapf(err, "store: create temp file in %s", dir)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "store: close temp file %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "store: replace %s", path)
	}
	return nil
}
