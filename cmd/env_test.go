package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-works/listings-cli/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Query: config.QueryConfig{
			Location:    "Stratford-upon-Avon, UK",
			RadiusMiles: 30,
			MaxPrice:    600000,
			Keywords:    []string{"renovation"},
		},
		Scrape: config.ScrapeConfig{
			Providers:   []string{"rightmove"},
			Concurrency: 1,
		},
		Geocode: config.GeocodeConfig{
			CacheDriver: "memory",
			RPS:         1,
		},
		Store: config.StoreConfig{
			ListingsPath:   filepath.Join(dir, "listings.csv"),
			FavouritesPath: filepath.Join(dir, "favourites.csv"),
		},
	}
}

func TestInitEnv(t *testing.T) {
	cfg = testConfig(t)

	e, err := initEnv(context.Background())
	require.NoError(t, err)
	defer e.Close()

	assert.NotNil(t, e.Engine)
	assert.NotNil(t, e.Listings)
	assert.NotNil(t, e.Favourites)
}

func TestInitEnv_UnknownCacheDriver(t *testing.T) {
	cfg = testConfig(t)
	cfg.Geocode.CacheDriver = "redis"

	_, err := initEnv(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown cache driver")
}

func TestQueryFromConfig(t *testing.T) {
	cfg = testConfig(t)

	q := query()
	assert.Equal(t, "Stratford-upon-Avon, UK", q.Location)
	assert.Equal(t, 30, q.RadiusMiles)
	assert.Equal(t, int64(600000), q.MaxPrice)
	assert.Equal(t, []string{"renovation"}, q.Keywords)
}
