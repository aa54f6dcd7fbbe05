package geocode

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient returns canned results and counts calls.
type fakeClient struct {
	calls  atomic.Int32
	result *Result
	err    error
}

func (f *fakeClient) Geocode(_ context.Context, _ string) (*Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	return &out, nil
}

func TestResolve_Match(t *testing.T) {
	fc := &fakeClient{result: &Result{Lat: 52.19, Lon: -1.70, Matched: true}}
	r := NewResolver(fc, NewMemoryCache())

	c := r.Resolve(context.Background(), "1 Lane Rd")
	require.True(t, c.Valid)
	assert.InDelta(t, 52.19, c.Lat, 0.0001)
}

func TestResolve_EmptyAddress(t *testing.T) {
	fc := &fakeClient{result: &Result{Matched: true, Lat: 1, Lon: 1}}
	r := NewResolver(fc, nil)

	c := r.Resolve(context.Background(), "   ")
	assert.False(t, c.Valid)
	assert.Equal(t, int32(0), fc.calls.Load())
}

func TestResolve_MemoAvoidsRepeatLookups(t *testing.T) {
	fc := &fakeClient{result: &Result{Lat: 52.19, Lon: -1.70, Matched: true}}
	r := NewResolver(fc, nil)

	first := r.Resolve(context.Background(), "1 Lane Rd")
	second := r.Resolve(context.Background(), "1 Lane Rd")
	// Same address with different spacing and case hits the memo too.
	third := r.Resolve(context.Background(), "  1 LANE RD ")

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, int32(1), fc.calls.Load())
}

func TestResolve_PersistentCacheHitSkipsClient(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Put(ctx, Key("1 Lane Rd"), &Result{Lat: 52.19, Lon: -1.70, Matched: true}))

	fc := &fakeClient{result: &Result{Matched: false}}
	r := NewResolver(fc, cache)

	c := r.Resolve(ctx, "1 Lane Rd")
	assert.True(t, c.Valid)
	assert.Equal(t, int32(0), fc.calls.Load())
}

func TestResolve_ClientErrorIsAbsentAndNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	fc := &fakeClient{err: eris.New("connection refused")}
	r := NewResolver(fc, cache)

	c := r.Resolve(ctx, "1 Lane Rd")
	assert.False(t, c.Valid)

	_, ok, err := cache.Get(ctx, Key("1 Lane Rd"))
	require.NoError(t, err)
	assert.False(t, ok, "transient failures must not poison the persistent cache")
}

func TestResolve_NoMatchIsCached(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	fc := &fakeClient{result: &Result{Matched: false}}
	r := NewResolver(fc, cache)

	c := r.Resolve(ctx, "nowhere")
	assert.False(t, c.Valid)

	got, ok, err := cache.Get(ctx, Key("nowhere"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.Matched)
}

func TestResolve_OutOfRangeResultIsAbsent(t *testing.T) {
	// A cache written by an older version may carry out-of-range values;
	// the resolver discards them on read.
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Put(ctx, Key("bad"), &Result{Lat: 95, Lon: 0, Matched: true}))

	r := NewResolver(&fakeClient{result: &Result{Matched: false}}, cache)
	c := r.Resolve(ctx, "bad")
	assert.False(t, c.Valid)
}
