package store

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/model"
)

// ListingStore persists the canonical dataset file. Every write replaces the
// whole file; the dataset always reflects exactly the latest run.
type ListingStore struct {
	path string
}

// NewListingStore creates a store writing to path.
func NewListingStore(path string) *ListingStore {
	return &ListingStore{path: path}
}

// Path returns the dataset file location.
func (s *ListingStore) Path() string { return s.path }

// Replace overwrites the dataset with the given listings. An empty slice
// produces a header-only file, not an absent one.
func (s *ListingStore) Replace(listings []model.Listing) error {
	err := writeAtomic(s.path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(model.Columns()); err != nil {
			return eris.Wrap(err, "store: write dataset header")
		}
		for _, l := range listings {
			if err := w.Write(listingRow(l)); err != nil {
				return eris.Wrapf(err, "store: write dataset row for %s", l.URL)
			}
		}
		w.Flush()
		return eris.Wrap(w.Error(), "store: flush dataset")
	})
	if err != nil {
		return err
	}
	zap.L().Info("dataset replaced", zap.String("path", s.path), zap.Int("rows", len(listings)))
	return nil
}

// Load reads the dataset back. A missing file loads as an empty dataset.
func (s *ListingStore) Load() ([]model.Listing, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: open dataset %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "store: read dataset %s", s.path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := rowIndex(rows[0])
	listings := make([]model.Listing, 0, len(rows)-1)
	for _, row := range rows[1:] {
		listings = append(listings, parseListing(row, idx))
	}
	return listings, nil
}
