package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"roombook/config"
	"roombook/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
	Nil                   = redis.Nil
)

// Cache stores JSON encoded values under string keys with a TTL in seconds.
type Cache interface {
	Save(ctx context.Context, key string, value any, duration int) (err error)
	Get(ctx context.Context, key string, value any) (err error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, prefix string) error
	// Increment bumps a counter that lives for window seconds from its first increment.
	Increment(ctx context.Context, key string, window int) (int64, error)
}

// New picks the driver from configuration. A nil redis client always yields the in-memory driver.
func New(cfg *config.Config, client *redis.Client, ot otel.Otel) Cache {
	if cfg.Cache.Driver == config.CacheDriverMemory || client == nil {
		log.Info().Str("driver", config.CacheDriverMemory).Msg("cache driver selected")

		return NewMemoryCache(cfg.Cache.TTL, ot)
	}

	log.Info().Str("driver", config.CacheDriverRedis).Msg("cache driver selected")

	return NewRedisCache(client, ot)
}
