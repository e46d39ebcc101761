// file: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"campusvoice/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is the caching interface used by the service layer. Values are
// opaque; the memory backend stores them as-is, the Redis backend
// round-trips them through JSON.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
	Health(ctx context.Context) error
	Close() error
}

// GetJSON fetches key and unmarshals it into dest.
func GetJSON(ctx context.Context, c Cache, key string, dest interface{}) bool {
	raw, found := c.Get(ctx, key)
	if !found {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}

// New selects the backend: Redis when a URL is configured, otherwise the
// in-process memory cache.
func New(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if cfg.RedisURL != "" {
		return NewRedisCache(cfg, logger)
	}
	logger.Info("Redis not configured, using in-process memory cache")
	return NewMemoryCache(cfg, logger), nil
}

// ===============================
// MEMORY CACHE
// ===============================

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

type memoryCache struct {
	items      map[string]cacheItem
	maxEntries int
	logger     *zap.Logger
	mu         sync.RWMutex
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates an in-process cache with periodic expiry sweeps.
func NewMemoryCache(cfg *config.CacheConfig, logger *zap.Logger) Cache {
	c := &memoryCache{
		items:      make(map[string]cacheItem),
		maxEntries: cfg.MaxEntries,
		logger:     logger,
		stop:       make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Drop the oldest-expiring entry when full; good enough for a local
	// fallback cache.
	if len(c.items) >= c.maxEntries {
		c.evictOne()
	}
	c.items[key] = cacheItem{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Health(ctx context.Context) error { return nil }

func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

func (c *memoryCache) evictOne() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = item.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, item := range c.items {
				if now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// ===============================
// REDIS CACHE
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	logger.Info("Redis cache connected", zap.String("addr", opts.Addr))
	return &redisCache{client: client, logger: logger}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("Redis get failed", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}
	return value, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
