package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scamshield/riskengine/internal/domain/artifact"
	"github.com/scamshield/riskengine/internal/infrastructure/monitoring/logging"
	apperrors "github.com/scamshield/riskengine/pkg/errors"
)

var (
	ErrCacheMiss           = apperrors.New(apperrors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = apperrors.New(apperrors.ErrCodeSerialization, "serialization failed")
)

// ResultCache stores assessment cache entries in redis, keyed by
// artifact fingerprint. Redis key expiry mirrors the entry's own
// expiry, so a live key always holds a live entry.
type ResultCache struct {
	client *Client
	logger logging.Logger
	prefix string
	now    func() time.Time
}

type CacheOption func(*ResultCache)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *ResultCache) { c.prefix = prefix }
}

// WithClock injects a clock for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) { c.now = now }
}

// NewResultCache builds a redis-backed assessment cache.
func NewResultCache(client *Client, log logging.Logger, opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		client: client,
		logger: log.Named("cache"),
		prefix: "riskd:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ResultCache) key(fingerprint string) string {
	return c.prefix + "assessment:" + fingerprint
}

// Get fetches a live cache entry for the fingerprint.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (*artifact.CacheEntry, error) {
	rdb, err := c.client.raw()
	if err != nil {
		return nil, err
	}

	data, err := rdb.Get(ctx, c.key(fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to get from cache")
	}

	var entry artifact.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, ErrSerializationFailed
	}
	// Guard against clock drift between writers.
	if entry.Expired(c.now()) {
		return nil, ErrCacheMiss
	}
	return &entry, nil
}

// Put stores the entry until its expiry instant. Entries already
// expired are silently skipped.
func (c *ResultCache) Put(ctx context.Context, entry *artifact.CacheEntry) error {
	rdb, err := c.client.raw()
	if err != nil {
		return err
	}

	ttl := entry.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := rdb.Set(ctx, c.key(entry.Fingerprint), data, ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeCacheError, "failed to write to cache")
	}
	return nil
}
