package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-works/listings-cli/internal/model"
)

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Price
	}{
		{"£250,000", model.KnownPrice(250000)},
		{"350000", model.KnownPrice(350000)},
		{"", model.Price{}},
		{"n/a", model.Price{}},
		{"POA", model.Price{}},
		{"£ 1,250,000", model.KnownPrice(1250000)},
		{"0", model.KnownPrice(0)},
		{"-5", model.Price{}},
		{"Guide Price £240,000", model.Price{}},
		{"   ", model.Price{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CoercePrice(tt.raw))
		})
	}
}

func TestCoercePrice_NeverZeroForUnparseable(t *testing.T) {
	for _, raw := range []string{"", "n/a", "unknown", "£", "one million"} {
		p := CoercePrice(raw)
		assert.False(t, p.Known, "raw %q must coerce to unknown", raw)
	}
}

func TestNormalize_AliasPrecedence(t *testing.T) {
	n := New()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// price present blocks price_raw and price_gbp.
	l := n.Normalize(model.Record{
		"price":     "100000",
		"price_raw": "200000",
		"price_gbp": "300000",
	}, model.SourceRightmove, now)
	assert.Equal(t, model.KnownPrice(100000), l.Price)

	// price_raw wins over price_gbp when price is absent.
	l = n.Normalize(model.Record{
		"price_raw": "200000",
		"price_gbp": "300000",
	}, model.SourceRightmove, now)
	assert.Equal(t, model.KnownPrice(200000), l.Price)

	l = n.Normalize(model.Record{"price_gbp": "300000"}, model.SourceRightmove, now)
	assert.Equal(t, model.KnownPrice(300000), l.Price)
}

func TestNormalize_LatLonAliases(t *testing.T) {
	n := New()
	now := time.Now().UTC()

	l := n.Normalize(model.Record{
		"latitude":  "52.1917",
		"longitude": "-1.7073",
	}, model.SourceZoopla, now)
	require.True(t, l.Location.Valid)
	assert.InDelta(t, 52.1917, l.Location.Lat, 0.0001)
	assert.InDelta(t, -1.7073, l.Location.Lon, 0.0001)

	// Existing lat is not overwritten by latitude.
	l = n.Normalize(model.Record{
		"lat":      "51.5",
		"lon":      "-0.1",
		"latitude": "99",
	}, model.SourceZoopla, now)
	require.True(t, l.Location.Valid)
	assert.InDelta(t, 51.5, l.Location.Lat, 0.0001)
}

func TestNormalize_PartialCoordinatesAreAbsent(t *testing.T) {
	n := New()
	now := time.Now().UTC()

	for _, rec := range []model.Record{
		{"lat": "52.1"},
		{"lon": "-1.7"},
		{"lat": "52.1", "lon": ""},
		{"lat": "not a number", "lon": "-1.7"},
		{"lat": "91", "lon": "0"},
		{"lat": "0", "lon": "-200"},
	} {
		l := n.Normalize(rec, model.SourceRightmove, now)
		assert.False(t, l.Location.Valid, "record %v must yield absent location", rec)
		assert.Zero(t, l.Location.Lat)
		assert.Zero(t, l.Location.Lon)
	}
}

func TestNormalize_DefaultsEveryField(t *testing.T) {
	n := New()
	now := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

	l := n.Normalize(model.Record{}, model.SourceOnTheMarket, now)

	assert.Equal(t, "", l.Title)
	assert.False(t, l.Price.Known)
	assert.Equal(t, "", l.Address)
	assert.Equal(t, "", l.Description)
	assert.False(t, l.Location.Valid)
	assert.Equal(t, "", l.ImageURL)
	assert.Equal(t, model.SourceOnTheMarket, l.Source)
	assert.Equal(t, "", l.URL)
	assert.Equal(t, now, l.FetchedAt)
}

func TestNormalize_Deterministic(t *testing.T) {
	n := New()
	now := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)
	rec := model.Record{
		"title":   "Cottage",
		"price":   "£240,000",
		"address": "1 Lane Rd",
		"url":     "http://a/1",
	}

	first := n.Normalize(rec, model.SourceRightmove, now)
	second := n.Normalize(rec, model.SourceRightmove, now)
	assert.Equal(t, first, second)

	// The input record itself is not mutated.
	assert.Len(t, rec, 4)
}

func TestNormalize_LinkAndImageAliases(t *testing.T) {
	n := New()
	l := n.Normalize(model.Record{
		"link":  "http://a/9",
		"image": "http://img/9.jpg",
	}, model.SourceRightmove, time.Now().UTC())

	assert.Equal(t, "http://a/9", l.URL)
	assert.Equal(t, "http://img/9.jpg", l.ImageURL)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Two bed cottage", CleanText("  Two\tbed\n cottage "))
	assert.Equal(t, "", CleanText("\x00\x07"))
	assert.Equal(t, "café", CleanText("café")) // NFC composition
}

func TestDefaultRules_CopyIsIsolated(t *testing.T) {
	a := DefaultRules()
	require.NotEmpty(t, a)
	a[0].To = "mutated"

	b := DefaultRules()
	assert.NotEqual(t, "mutated", b[0].To)
}
