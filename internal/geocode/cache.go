package geocode

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// Cache stores geocode results keyed by normalized address hash. Both
// matches and non-matches are cached, so a known-bad address is not
// re-resolved every run.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool, error)
	Put(ctx context.Context, key string, res *Result) error
	Close() error
}

// Key returns SHA-256 hex of the lowercased, trimmed address.
func Key(address string) string {
	normalized := strings.ToLower(strings.TrimSpace(address))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// MemoryCache is a process-lifetime in-memory cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Result
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Result)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*Result, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := r
	return &out, true, nil
}

func (m *MemoryCache) Put(_ context.Context, key string, res *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = *res
	return nil
}

func (m *MemoryCache) Close() error { return nil }
