package model

import "time"

// Favourite is a Listing snapshot saved by an explicit user action.
// Favourites are keyed by listing URL, never mutated after creation, and
// removed only by clearing the whole store.
type Favourite struct {
	Listing
	SavedAt time.Time
}

// FavouriteColumns is the favourites store header, in serialization order.
func FavouriteColumns() []string {
	return append(Columns(), "saved_at")
}
