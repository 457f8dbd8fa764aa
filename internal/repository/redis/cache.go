package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects to redis. The server is fully functional without
// it, so an unreachable redis downgrades to Postgres-only instead of
// failing startup.
func InitRedis(addr, password string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("[REDIS] Warning: could not connect to Redis: %v. Falling back to PostgreSQL only.", err)
		client.Close()
		return nil
	}

	log.Println("[REDIS] Connected successfully")
	return &Cache{client: client}
}

// Cache wraps redis.Client. A nil *Cache is valid and behaves as a
// cache that never hits.
type Cache struct {
	client *redis.Client
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}

	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		log.Printf("[REDIS] Get %s failed: %v", key, err)
		return "", false
	}
	return value, true
}

// Set stores a value with an expiration, best effort.
func (c *Cache) Set(ctx context.Context, key, value string, expiration time.Duration) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Printf("[REDIS] Set %s failed: %v", key, err)
	}
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
