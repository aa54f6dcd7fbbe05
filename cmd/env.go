package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/reno-works/listings-cli/internal/fetcher"
	"github.com/reno-works/listings-cli/internal/geocode"
	"github.com/reno-works/listings-cli/internal/model"
	"github.com/reno-works/listings-cli/internal/normalize"
	"github.com/reno-works/listings-cli/internal/pipeline"
	"github.com/reno-works/listings-cli/internal/provider"
	"github.com/reno-works/listings-cli/internal/store"
)

// env bundles the wired application components shared by the run and serve
// commands.
type env struct {
	Engine     *pipeline.Engine
	Listings   *store.ListingStore
	Favourites *store.FavouriteStore

	cache geocode.Cache
}

// initEnv wires the fetcher, geocoder, adapters, stores, and pipeline from
// the loaded configuration.
func initEnv(ctx context.Context) (*env, error) {
	cache, err := geocode.OpenCache(ctx, cfg.Geocode.CacheDriver, cfg.Geocode.CachePath, cfg.Geocode.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open geocode cache")
	}

	client := geocode.NewClient(
		geocode.WithBaseURL(cfg.Geocode.BaseURL),
		geocode.WithUserAgent(cfg.Geocode.UserAgent),
		geocode.WithRateLimit(cfg.Geocode.RPS),
	)
	resolver := geocode.NewResolver(client, cache)

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Scrape.UserAgent,
		Timeout:    time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Scrape.MaxRetries,
		HostRPS:    cfg.Scrape.HostRPS,
	})

	registry := provider.DefaultRegistry(f, resolver, provider.Options{
		CardDelay: cfg.Scrape.CardDelay(),
	})

	listings := store.NewListingStore(cfg.Store.ListingsPath)
	engine := pipeline.New(registry, normalize.New(), listings, pipeline.Options{
		Providers:   cfg.Scrape.Providers,
		Concurrency: cfg.Scrape.Concurrency,
		KeepOnEmpty: cfg.Pipeline.KeepOnEmpty,
	})

	return &env{
		Engine:     engine,
		Listings:   listings,
		Favourites: store.NewFavouriteStore(cfg.Store.FavouritesPath),
		cache:      cache,
	}, nil
}

// Close releases the geocode cache backend.
func (e *env) Close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}

// query builds the provider search query from configuration.
func query() model.Query {
	return model.Query{
		Location:      cfg.Query.Location,
		RadiusMiles:   cfg.Query.RadiusMiles,
		MaxPrice:      cfg.Query.MaxPrice,
		Keywords:      cfg.Query.Keywords,
		PropertyTypes: cfg.Query.PropertyTypes,
	}
}
