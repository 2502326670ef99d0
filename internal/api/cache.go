package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/sentinel-console/internal/metrics"
)

const cacheKeyPrefix = "console:api:"

// Cache is a Redis-backed read-through cache for idempotent API reads.
// Values are stored as JSON; a miss is never an error.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// CacheConfig holds Redis connection settings.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"pool_size"`
	TTL      time.Duration `yaml:"ttl"`
}

// DefaultCacheConfig returns sensible defaults.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
		TTL:      time.Minute,
	}
}

// NewCache connects to Redis. The connection is lazy; use Ping to verify.
func NewCache(cfg CacheConfig, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return &Cache{client: client, logger: logger}
}

// Ping verifies the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get unmarshals a cached value into dest, reporting whether the key was found.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			metrics.CacheMisses.Inc()
			return false, nil
		}
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it.
		c.logger.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		metrics.CacheMisses.Inc()
		return false, nil
	}

	metrics.CacheHits.Inc()
	return true, nil
}

// Set stores a value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
