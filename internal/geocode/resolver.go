package geocode

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/reno-works/listings-cli/internal/model"
)

// Resolver turns free-text addresses into coordinates. Lookups go through
// an in-run memo, then the persistent cache, then the client. Every failure
// mode collapses to an absent location; callers never see an error.
//
// The underlying client owns the rate limiter, so a single Resolver shared
// by concurrent providers enforces one global request budget.
type Resolver struct {
	client Client
	cache  Cache

	mu   sync.Mutex
	memo map[string]model.Coordinates
}

// NewResolver creates a Resolver over the given client and cache. A nil
// cache disables the persistent layer; the in-run memo still applies.
func NewResolver(client Client, cache Cache) *Resolver {
	return &Resolver{
		client: client,
		cache:  cache,
		memo:   make(map[string]model.Coordinates),
	}
}

// Resolve geocodes an address. An empty address, a lookup miss, an
// out-of-range result, and a transport failure all yield absent
// coordinates.
func (r *Resolver) Resolve(ctx context.Context, address string) model.Coordinates {
	address = strings.TrimSpace(address)
	if address == "" {
		return model.Coordinates{}
	}
	key := Key(address)

	r.mu.Lock()
	if c, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return c
	}
	r.mu.Unlock()

	coords := r.lookup(ctx, key, address)

	r.mu.Lock()
	r.memo[key] = coords
	r.mu.Unlock()
	return coords
}

func (r *Resolver) lookup(ctx context.Context, key, address string) model.Coordinates {
	log := zap.L().With(zap.String("component", "geocode.resolver"))

	if r.cache != nil {
		if res, ok, err := r.cache.Get(ctx, key); err != nil {
			log.Warn("cache read failed", zap.Error(err))
		} else if ok {
			return coordsFromResult(res)
		}
	}

	res, err := r.client.Geocode(ctx, address)
	if err != nil {
		// Transient failures are not cached persistently so the address is
		// retried on the next run.
		log.Warn("geocode failed",
			zap.String("address", address),
			zap.Error(err),
		)
		return model.Coordinates{}
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, res); err != nil {
			log.Warn("cache write failed", zap.Error(err))
		}
	}

	if !res.Matched {
		log.Debug("no match", zap.String("address", address))
	}
	return coordsFromResult(res)
}

func coordsFromResult(res *Result) model.Coordinates {
	if res == nil || !res.Matched {
		return model.Coordinates{}
	}
	return model.NewCoordinates(res.Lat, res.Lon)
}

// OpenCache builds the cache backend named by driver: "sqlite" (path),
// "postgres" (databaseURL), or "memory".
func OpenCache(ctx context.Context, driver, path, databaseURL string) (Cache, error) {
	switch driver {
	case "sqlite":
		return NewSQLiteCache(path)
	case "postgres":
		return NewPostgresCache(ctx, databaseURL)
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, eris.Errorf("geocode: unknown cache driver %q", driver)
	}
}
