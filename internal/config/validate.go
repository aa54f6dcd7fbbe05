package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks the configuration needed for the given mode
// ("run" or "serve") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func() {
		if len(c.Scrape.Providers) == 0 {
			problems = append(problems, "scrape.providers must name at least one provider")
		}
		if c.Scrape.Concurrency < 1 || c.Scrape.Concurrency > 10 {
			problems = append(problems, "scrape.concurrency must be between 1 and 10")
		}
		if c.Scrape.MaxRetries < 0 {
			problems = append(problems, "scrape.max_retries must not be negative")
		}
		if c.Geocode.RPS <= 0 {
			problems = append(problems, "geocode.rps must be > 0")
		}
		switch c.Geocode.CacheDriver {
		case "sqlite":
			if c.Geocode.CachePath == "" {
				problems = append(problems, "geocode.cache_path is required for the sqlite cache")
			}
		case "postgres":
			if c.Geocode.DatabaseURL == "" {
				problems = append(problems, "geocode.database_url is required for the postgres cache")
			}
		case "memory":
		default:
			problems = append(problems, "geocode.cache_driver must be sqlite, postgres, or memory")
		}
		if c.Store.ListingsPath == "" {
			problems = append(problems, "store.listings_path is required")
		}
		if c.Store.FavouritesPath == "" {
			problems = append(problems, "store.favourites_path is required")
		}
	}

	switch mode {
	case "run":
		check()
	case "serve":
		check()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}
