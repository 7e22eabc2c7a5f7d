package redis

import (
	"context"

	"github.com/plantdesklabs/plantdesk/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("redis",
	fx.Provide(NewClient),
)

// NewClient connects to the redis instance named in the rate-limit config.
// A nil client is a valid result: when no address is configured the
// features that want redis disable themselves.
func NewClient(cfg config.Config) (*redis.Client, error) {
	if cfg.RateLimit.RedisAddr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
