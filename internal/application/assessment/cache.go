// Package assessment hosts the decision orchestrator: it sequences the
// static and dynamic stages, deduplicates concurrent work on the same
// artifact, and serves previously computed decisions from cache.
package assessment

import (
	"context"
	"sync"
	"time"

	"github.com/scamshield/riskengine/internal/domain/artifact"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

// ErrCacheMiss is returned by ResultCache.Get when no live entry
// exists for the fingerprint.
var ErrCacheMiss = apperrors.New(apperrors.ErrCodeNotFound, "cache miss")

// ResultCache stores finished assessments keyed by artifact
// fingerprint. Implementations must be safe for concurrent use and
// must never return an expired entry.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*artifact.CacheEntry, error)
	Put(ctx context.Context, entry *artifact.CacheEntry) error
}

// memoryCache is the in-process ResultCache used by default and in
// tests. Expired entries are dropped lazily on read.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*artifact.CacheEntry
	now     func() time.Time
}

// NewMemoryCache builds an in-process result cache. A nil now falls
// back to the wall clock; tests inject their own.
func NewMemoryCache(now func() time.Time) ResultCache {
	if now == nil {
		now = time.Now
	}
	return &memoryCache{
		entries: make(map[string]*artifact.CacheEntry),
		now:     now,
	}
}

func (c *memoryCache) Get(_ context.Context, fingerprint string) (*artifact.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[fingerprint]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.Expired(c.now()) {
		c.mu.Lock()
		// Re-check under the write lock, a concurrent Put may have
		// refreshed the entry.
		if cur, ok := c.entries[fingerprint]; ok && cur.Expired(c.now()) {
			delete(c.entries, fingerprint)
		}
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry, nil
}

func (c *memoryCache) Put(_ context.Context, entry *artifact.CacheEntry) error {
	c.mu.Lock()
	c.entries[entry.Fingerprint] = entry
	c.mu.Unlock()
	return nil
}
