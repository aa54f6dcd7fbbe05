package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-works/listings-cli/internal/model"
)

// stubProvider is a named do-nothing provider for registry tests.
type stubProvider struct {
	name string
}

func (s *stubProvider) Name() string         { return s.name }
func (s *stubProvider) Source() model.Source { return model.Source(s.name) }
func (s *stubProvider) Fetch(context.Context, model.Query) ([]model.Record, error) {
	return nil, nil
}

func TestRegistry_OrderIsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "b"})
	r.Register(&stubProvider{name: "a"})
	r.Register(&stubProvider{name: "c"})

	assert.Equal(t, []string{"b", "a", "c"}, r.AllNames())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].Name())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nope")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestRegistry_SelectByName(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "a"})
	r.Register(&stubProvider{name: "b"})

	got, err := r.Select([]string{"b"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Name())

	_, err = r.Select([]string{"missing"})
	assert.Error(t, err)

	got, err = r.Select(nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRegistry_ReregisterKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubProvider{name: "a"})
	r.Register(&stubProvider{name: "b"})

	replacement := &stubProvider{name: "a"}
	r.Register(replacement)

	assert.Equal(t, []string{"a", "b"}, r.AllNames())
	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(nil, nil, Options{})
	assert.Equal(t, []string{"rightmove", "zoopla", "onthemarket"}, r.AllNames())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "stratford-upon-avon", slugify("Stratford-upon-Avon, UK"))
	assert.Equal(t, "milton-keynes", slugify("Milton Keynes"))
	assert.Equal(t, "leeds", slugify("  Leeds  "))
}

func TestAbsURL(t *testing.T) {
	assert.Equal(t, "https://a.example/p/1", absURL("https://a.example", "/p/1"))
	assert.Equal(t, "https://a.example/p/1", absURL("https://a.example/", "p/1"))
	assert.Equal(t, "https://other.example/x", absURL("https://a.example", "https://other.example/x"))
	assert.Equal(t, "", absURL("https://a.example", "  "))
}
