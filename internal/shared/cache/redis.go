package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mysterie/creditgate/internal/shared/config"
)

const (
	defaultQuoteTTL = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// NewRedisClient creates the Redis client backing the quote listing
// cache.
func NewRedisClient(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Address,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "creditgate",
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// QuoteTTL returns the configured quote listing TTL, defaulted when the
// config leaves it unset.
func QuoteTTL(cfg *config.RedisConfig) time.Duration {
	if cfg.QuoteTTL <= 0 {
		return defaultQuoteTTL
	}
	return cfg.QuoteTTL
}

// Close closes the Redis client.
func Close(client redis.UniversalClient) error {
	return client.Close()
}
