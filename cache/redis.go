package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisKeyPrefix = "i18nbackend:"
	redisScanCount        = 100
)

// RedisCache is a Redis-backed namespace cache. Entries are stored as JSON
// and expire through native Redis TTLs.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       time.Duration // 0 = no expiration
	KeyPrefix string        // Prefix for all keys (default: "i18nbackend:")
}

// NewRedisCache creates a new Redis cache with the given configuration.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultRedisKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    slog.Default(),
	}
}

// WithLogger sets the logger used to report swallowed Redis errors.
func (c *RedisCache) WithLogger(logger *slog.Logger) *RedisCache {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Get retrieves a value from Redis. Errors are logged and reported as a miss.
func (c *RedisCache) Get(key string) (map[string]any, bool) {
	ctx := context.Background()
	val, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("redis cache get failed", "key", key, "error", err)
		return nil, false
	}

	var value map[string]any
	if err := json.Unmarshal(val, &value); err != nil {
		c.logger.Warn("redis cache entry is not valid JSON", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value map[string]any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(context.Background(), c.keyPrefix+key, data, c.ttl).Err()
}

// Delete removes a single entry.
func (c *RedisCache) Delete(key string) {
	if err := c.client.Del(context.Background(), c.keyPrefix+key).Err(); err != nil {
		c.logger.Warn("redis cache delete failed", "key", key, "error", err)
	}
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *RedisCache) DeletePrefix(prefix string) {
	ctx := context.Background()
	match := escapeGlob(c.keyPrefix+prefix) + "*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			c.logger.Warn("redis cache scan failed", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Warn("redis cache delete failed", "prefix", prefix, "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

// Clear removes every entry under the key prefix.
func (c *RedisCache) Clear() {
	c.DeletePrefix("")
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var _ Store = (*RedisCache)(nil)
