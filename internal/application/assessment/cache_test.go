package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scamshield/riskengine/internal/domain/artifact"
)

func TestMemoryCache_PutGet(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	entry := &artifact.CacheEntry{
		Fingerprint:  "fp1",
		FinalVerdict: artifact.VerdictWarn,
		FinalScore:   0.5,
		Reasons:      []string{"something"},
		ComputedAt:   time.Now(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	require.NoError(t, cache.Put(ctx, entry))

	got, err := cache.Get(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, entry, got)
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache(nil)
	_, err := cache.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_ExpiryBoundary(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := t0
	cache := NewMemoryCache(func() time.Time { return current })
	ctx := context.Background()

	ttl := time.Hour
	entry := &artifact.CacheEntry{
		Fingerprint: "fp1",
		ComputedAt:  t0,
		ExpiresAt:   t0.Add(ttl),
	}
	require.NoError(t, cache.Put(ctx, entry))

	// One instant before expiry the entry is served.
	current = t0.Add(ttl - time.Nanosecond)
	_, err := cache.Get(ctx, "fp1")
	assert.NoError(t, err)

	// At exactly t0+TTL the entry is gone: the window is half-open.
	current = t0.Add(ttl)
	_, err = cache.Get(ctx, "fp1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	// And stays gone.
	current = t0.Add(2 * ttl)
	_, err = cache.Get(ctx, "fp1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_Overwrite(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	first := &artifact.CacheEntry{Fingerprint: "fp1", FinalVerdict: artifact.VerdictOK, ExpiresAt: time.Now().Add(time.Hour)}
	second := &artifact.CacheEntry{Fingerprint: "fp1", FinalVerdict: artifact.VerdictBlock, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, cache.Put(ctx, first))
	require.NoError(t, cache.Put(ctx, second))

	got, err := cache.Get(ctx, "fp1")
	require.NoError(t, err)
	assert.Equal(t, artifact.VerdictBlock, got.FinalVerdict)
}
