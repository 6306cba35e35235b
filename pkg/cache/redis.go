// Package cache holds the optional Redis client and the username cache
// built on it.
package cache

import (
	"context"
	"errors"
	"time"

	"cineclub/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis. It returns nil when no address is
// configured or the server is unreachable, and callers run without a cache.
func NewRedisClient(ctx context.Context, cfg utils.RedisConfig, log *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Info("Redis disabled, REDIS_ADDR is empty")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, continuing without cache",
			zap.String("addr", cfg.Addr),
			zap.Error(err),
		)
		_ = client.Close()
		return nil
	}

	log.Info("Redis connected", zap.String("addr", cfg.Addr))
	return client
}

// UsernameCache stores resolved usernames keyed by user id.
type UsernameCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewUsernameCache(rdb redis.Cmdable, ttl time.Duration) *UsernameCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &UsernameCache{rdb: rdb, ttl: ttl, prefix: "cineclub:username:"}
}

func (c *UsernameCache) key(id uuid.UUID) string {
	return c.prefix + id.String()
}

// Get reports false on a miss.
func (c *UsernameCache) Get(ctx context.Context, id uuid.UUID) (string, bool, error) {
	name, err := c.rdb.Get(ctx, c.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

func (c *UsernameCache) Set(ctx context.Context, id uuid.UUID, username string) error {
	return c.rdb.Set(ctx, c.key(id), username, c.ttl).Err()
}
