package geocode

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteCache is a file-backed cache, the default driver. It survives
// across ingestion runs.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) a SQLite cache at the given path and
// configures WAL mode.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "geocode: sqlite exec %s", pragma)
		}
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address_hash TEXT PRIMARY KEY,
	latitude     REAL NOT NULL,
	longitude    REAL NOT NULL,
	matched      INTEGER NOT NULL,
	cached_at    DATETIME NOT NULL
);
`

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(sqliteMigration)
	return eris.Wrap(err, "geocode: sqlite migrate")
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (*Result, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, matched FROM geocode_cache WHERE address_hash = ?`,
		key,
	)
	var r Result
	var matched int
	if err := row.Scan(&r.Lat, &r.Lon, &matched); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, eris.Wrap(err, "geocode: sqlite get")
	}
	r.Matched = matched != 0
	return &r, true, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, res *Result) error {
	matched := 0
	if res.Matched {
		matched = 1
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (address_hash, latitude, longitude, matched, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (address_hash) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			matched = excluded.matched,
			cached_at = excluded.cached_at`,
		key, res.Lat, res.Lon, matched, time.Now().UTC(),
	)
	return eris.Wrap(err, "geocode: sqlite put")
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
