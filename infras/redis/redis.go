package redis

import (
	"context"
	"fmt"
	"roombook/config"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Required reports whether any configured component talks to redis.
func Required(cfg *config.Config) bool {
	return cfg.Cache.Driver != config.CacheDriverMemory ||
		(cfg.App.RateLimiter.Enable && cfg.App.RateLimiter.Backend == config.CacheDriverRedis)
}

// New connects to the primary redis. It returns nil when nothing needs redis.
func New(cfg *config.Config) *goRedis.Client {
	if !Required(cfg) {
		log.Info().Msg("Redis not required by configuration, skipping connection")

		return nil
	}

	ctx := context.Background()
	client := goRedis.NewClient(&goRedis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Cache.Redis.Primary.Host, cfg.Cache.Redis.Primary.Port),
		Password: cfg.Cache.Redis.Primary.Password,
		DB:       cfg.Cache.Redis.Primary.DB,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}

	log.Info().
		Int("db", cfg.Cache.Redis.Primary.DB).
		Str("host", cfg.Cache.Redis.Primary.Host).
		Str("port", cfg.Cache.Redis.Primary.Port).
		Msg("Connected to Redis")

	return client
}
