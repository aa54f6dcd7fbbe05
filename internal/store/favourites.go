package store

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/model"
)

// FavouriteStore persists saved listings keyed by URL. Saves are idempotent
// and the store only ever shrinks by clearing it entirely.
type FavouriteStore struct {
	path string
}

// NewFavouriteStore creates a store writing to path.
func NewFavouriteStore(path string) *FavouriteStore {
	return &FavouriteStore{path: path}
}

// Path returns the favourites file location.
func (s *FavouriteStore) Path() string { return s.path }

// Add saves a listing snapshot. It reports false without writing when a
// favourite with the same URL already exists.
func (s *FavouriteStore) Add(l model.Listing, savedAt time.Time) (bool, error) {
	if l.URL == "" {
		return false, eris.New("store: favourite requires a listing url")
	}

	existing, err := s.All()
	if err != nil {
		return false, err
	}
	for _, fav := range existing {
		if fav.URL == l.URL {
			return false, nil
		}
	}

	existing = append(existing, model.Favourite{Listing: l, SavedAt: savedAt})
	if err := s.replace(existing); err != nil {
		return false, err
	}
	zap.L().Info("favourite saved", zap.String("url", l.URL))
	return true, nil
}

// All reads every favourite in insertion order. A missing file loads as an
// empty store.
func (s *FavouriteStore) All() ([]model.Favourite, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: open favourites %s", s.path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "store: read favourites %s", s.path)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := rowIndex(rows[0])
	favourites := make([]model.Favourite, 0, len(rows)-1)
	for _, row := range rows[1:] {
		fav := model.Favourite{Listing: parseListing(row, idx)}
		if raw := cell(row, idx, "saved_at"); raw != "" {
			if ts, err := time.Parse(timeLayout, raw); err == nil {
				fav.SavedAt = ts
			}
		}
		favourites = append(favourites, fav)
	}
	return favourites, nil
}

// Clear empties the store, leaving a header-only file behind.
func (s *FavouriteStore) Clear() error {
	if err := s.replace(nil); err != nil {
		return err
	}
	zap.L().Info("favourites cleared", zap.String("path", s.path))
	return nil
}

func (s *FavouriteStore) replace(favourites []model.Favourite) error {
	return writeAtomic(s.path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(model.FavouriteColumns()); err != nil {
			return eris.Wrap(err, "store: write favourites header")
		}
		for _, fav := range favourites {
			row := append(listingRow(fav.Listing), fav.SavedAt.UTC().Format(timeLayout))
			if err := w.Write(row); err != nil {
				return eris.Wrapf(err, "store: write favourite row for %s", fav.URL)
			}
		}
		w.Flush()
		return eris.Wrap(w.Error(), "store: flush favourites")
	})
}
