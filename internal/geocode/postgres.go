package geocode

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the cache needs. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresCache stores geocode results in Postgres, for deployments where
// several hosts share one cache.
type PostgresCache struct {
	pool Pool
}

// NewPostgresCache connects to the given database URL and ensures the cache
// table exists.
func NewPostgresCache(ctx context.Context, databaseURL string) (*PostgresCache, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: postgres connect")
	}
	c := &PostgresCache{pool: pool}
	if err := c.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

// NewPostgresCacheWithPool wraps an existing pool without migrating.
func NewPostgresCacheWithPool(pool Pool) *PostgresCache {
	return &PostgresCache{pool: pool}
}

func (c *PostgresCache) migrate(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS geocode_cache (
			address_hash TEXT PRIMARY KEY,
			latitude     DOUBLE PRECISION NOT NULL,
			longitude    DOUBLE PRECISION NOT NULL,
			matched      BOOLEAN NOT NULL,
			cached_at    TIMESTAMPTZ NOT NULL
		)`)
	return eris.Wrap(err, "geocode: postgres migrate")
}

func (c *PostgresCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	row := c.pool.QueryRow(ctx,
		`SELECT latitude, longitude, matched FROM geocode_cache WHERE address_hash = $1`,
		key,
	)
	var r Result
	if err := row.Scan(&r.Lat, &r.Lon, &r.Matched); err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocode: postgres get")
	}
	return &r, true, nil
}

func (c *PostgresCache) Put(ctx context.Context, key string, res *Result) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, matched, cached_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			matched = EXCLUDED.matched,
			cached_at = EXCLUDED.cached_at`,
		key, res.Lat, res.Lon, res.Matched, time.Now().UTC(),
	)
	return eris.Wrap(err, "geocode: postgres put")
}

func (c *PostgresCache) Close() error {
	c.pool.Close()
	return nil
}
