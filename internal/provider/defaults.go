package provider

import "github.com/reno-works/listings-cli/internal/fetcher"

// DefaultRegistry registers the built-in adapters. Registration order is
// the canonical source order of the dataset.
func DefaultRegistry(f fetcher.Fetcher, geo Geocoder, opts Options) *Registry {
	r := NewRegistry()
	r.Register(NewRightmove(f, geo, opts))
	r.Register(NewZoopla(f, geo, opts))
	r.Register(NewOnTheMarket(f, geo, opts))
	return r
}
