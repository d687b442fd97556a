package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"

	"github.com/wvflights/flightlog-api/pkg/logger"
)

// Cache interface defines caching operations
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache instance
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisCache) prefixKey(key string) string {
	if c.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", c.prefix, key)
}

// Get retrieves a value from cache
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefixKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return val, nil
}

// Set stores a value in cache with TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefixKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefixKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// Exists checks if a key exists in cache
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, c.prefixKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}
	return count > 0, nil
}

// Clear removes all keys with the cache prefix
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefixKey("*"), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear error: %w", err)
		}
	}
	return iter.Err()
}

// LocalCache is an in-process LRU used when Redis is not configured.
// Entries expire after the TTL given to NewLocalCache; per-call TTLs are
// ignored.
type LocalCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewLocalCache creates an LRU holding at most size entries.
func NewLocalCache(size int, ttl time.Duration) *LocalCache {
	if size <= 0 {
		size = 128
	}
	return &LocalCache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *LocalCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *LocalCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.lru.Add(key, value)
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	return c.lru.Contains(key), nil
}

func (c *LocalCache) Clear(_ context.Context) error {
	c.lru.Purge()
	return nil
}

// CacheManager provides JSON helpers on top of a Cache.
type CacheManager struct {
	cache Cache
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cache Cache) *CacheManager {
	return &CacheManager{cache: cache}
}

// GetJSON retrieves and unmarshals JSON data from cache
func (cm *CacheManager) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := cm.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetJSON marshals and stores JSON data in cache
func (cm *CacheManager) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}
	return cm.cache.Set(ctx, key, data, ttl)
}

// Delete removes a key from cache
func (cm *CacheManager) Delete(ctx context.Context, key string) error {
	return cm.cache.Delete(ctx, key)
}

// Exists checks if a key exists in cache
func (cm *CacheManager) Exists(ctx context.Context, key string) (bool, error) {
	return cm.cache.Exists(ctx, key)
}

// Clear removes all cached data
func (cm *CacheManager) Clear(ctx context.Context) error {
	return cm.cache.Clear(ctx)
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. A nil manager always calls load. Cache failures are logged and
// never fail the call.
func GetOrLoad[T any](ctx context.Context, cm *CacheManager, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if cm == nil {
		return load(ctx)
	}

	var cached T
	err := cm.GetJSON(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		logger.WithContext(ctx).Warn("cache read failed", "key", key, "error", err)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := cm.SetJSON(ctx, key, value, ttl); err != nil {
		logger.WithContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Cache policies and TTLs
const (
	ShortTTL  = 5 * time.Minute
	MediumTTL = 1 * time.Hour
	LongTTL   = 24 * time.Hour
)

// Cache key generators
func AircraftKey(tailNo string) string {
	if tailNo == "" {
		return "aircraft:all"
	}
	return "aircraft:" + strings.ToUpper(tailNo)
}

// TripsKey keys a trip load by the canonical form of its filters.
func TripsKey(paramsKey string) string {
	return "trips:" + paramsKey
}

func DataSourcesKey() string {
	return "datasources:all"
}

func DepartmentsKey(tailNo string) string {
	return "departments:" + tailNo
}

func DivisionsKey(department string) string {
	return "divisions:" + department
}
