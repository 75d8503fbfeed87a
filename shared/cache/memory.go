package cache

import (
	"context"
	"fmt"
	"roombook/infras/otel"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const memoryCleanupFactor = 2

type memoryCache struct {
	store *gocache.Cache
	otel  otel.Otel
}

// NewMemoryCache keeps entries in process. Used for single instance deployments and tests.
func NewMemoryCache(defaultTTL int, ot otel.Otel) Cache {
	ttl := time.Duration(defaultTTL) * time.Second
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}

	cleanup := ttl * memoryCleanupFactor
	if ttl == gocache.NoExpiration {
		cleanup = time.Minute
	}

	return &memoryCache{
		store: gocache.New(ttl, cleanup),
		otel:  ot,
	}
}

// Clear implements Cache. The prefix may end with the '*' glob used by the redis driver.
func (cache *memoryCache) Clear(ctx context.Context, prefix string) error {
	_, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".memory.Clear")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, prefix)

	prefix = strings.TrimSuffix(prefix, "*")

	for key := range cache.store.Items() {
		if strings.HasPrefix(key, prefix) {
			cache.store.Delete(key)
		}
	}

	return nil
}

// Delete implements Cache.
func (cache *memoryCache) Delete(ctx context.Context, key string) error {
	_, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".memory.Delete")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)
	cache.store.Delete(key)

	return nil
}

// Get implements Cache.
func (cache *memoryCache) Get(ctx context.Context, key string, value any) error {
	_, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".memory.Get")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	raw, found := cache.store.Get(key)
	if !found {
		return fmt.Errorf("failed to get cache value: %w", Nil)
	}

	str, _ := raw.(string)

	return decode(str, value)
}

// Save implements Cache. A non-positive duration falls back to the store default.
func (cache *memoryCache) Save(ctx context.Context, key string, value any, duration int) (err error) {
	_, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".memory.Save")
	defer scope.EndWith(&err)

	scope.SetAttribute(otelCacheKeyAttribute, key)

	str, err := encode(value)
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("cache", "memory").Msg("failed to marshal cache")

		return err
	}

	ttl := gocache.DefaultExpiration
	if duration > 0 {
		ttl = time.Duration(duration) * time.Second
	}

	cache.store.Set(key, str, ttl)

	return nil
}

// Increment implements Cache.
func (cache *memoryCache) Increment(ctx context.Context, key string, window int) (int64, error) {
	_, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".memory.Increment")
	defer scope.End()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	ttl := time.Duration(window) * time.Second
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	if err := cache.store.Add(key, int64(1), ttl); err == nil {
		return 1, nil
	}

	count, err := cache.store.IncrementInt64(key, 1)
	if err != nil {
		// the counter expired between Add and IncrementInt64
		cache.store.Set(key, int64(1), ttl)

		return 1, nil
	}

	return count, nil
}
