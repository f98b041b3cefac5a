package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/thefreed/feedcore/pkg/logger"
)

// Redis is a Cache backed by a Redis server, for deployments where feed
// pages should be shared across processes. TTL handling is delegated to
// Redis itself; any transport error degrades to a miss.
type Redis struct {
	client *redis.Client
	log    *logger.Logger
}

var _ Cache = (*Redis)(nil)

// NewRedis creates a Redis-backed cache.
func NewRedis(addr, password string, db int, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.NewDefault("cache-redis")
	}
	return &Redis{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		log: log,
	}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", key).Warn("redis get failed")
		}
		return nil, false
	}
	return value, true
}

func (c *Redis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis set failed")
	}
}

func (c *Redis) Remove(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("redis del failed")
	}
}

// Name implements the system.Service interface.
func (c *Redis) Name() string { return "cache-redis" }

// Start verifies connectivity to the Redis server.
func (c *Redis) Start(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Stop closes the underlying client.
func (c *Redis) Stop(_ context.Context) error {
	return c.client.Close()
}
