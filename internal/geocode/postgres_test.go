package geocode

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCache_GetHit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("1 Lane Rd")
	mock.ExpectQuery("SELECT latitude, longitude, matched FROM geocode_cache").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "matched"}).
			AddRow(52.1917, -1.7073, true))

	c := NewPostgresCacheWithPool(mock)
	got, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Matched)
	assert.InDelta(t, 52.1917, got.Lat, 0.0001)
	assert.InDelta(t, -1.7073, got.Lon, 0.0001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_GetMiss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("unseen")
	mock.ExpectQuery("SELECT latitude, longitude, matched FROM geocode_cache").
		WithArgs(key).
		WillReturnRows(pgxmock.NewRows([]string{"latitude", "longitude", "matched"}))

	c := NewPostgresCacheWithPool(mock)
	_, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Put(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	key := Key("1 Lane Rd")
	mock.ExpectExec("INSERT INTO geocode_cache").
		WithArgs(key, 52.1917, -1.7073, true, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	c := NewPostgresCacheWithPool(mock)
	err = c.Put(context.Background(), key, &Result{Lat: 52.1917, Lon: -1.7073, Matched: true})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
