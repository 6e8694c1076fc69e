package tiersource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/bonus/internal/domain/tier"
	"github.com/redis/go-redis/v9"
)

// Cache keeps the last tier list fetched from the origin.
type Cache interface {
	Get(ctx context.Context) ([]tier.Tier, error)
	Put(ctx context.Context, tiers []tier.Tier) error
}

// FileCache keeps the last good table in a local JSON file so that the next
// process start can fall back to it.
type FileCache struct {
	mu   sync.Mutex
	path string
}

// NewFileCache stores the table at path.
func NewFileCache(path string) *FileCache { return &FileCache{path: path} }

// Get reads the cached tiers. A missing file is ErrCacheMiss.
func (c *FileCache) Get(_ context.Context) ([]tier.Tier, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read tier cache %s: %w", c.path, err)
	}
	return Decode(data, FormatJSON)
}

// Put replaces the file atomically through a temporary sibling.
func (c *FileCache) Put(_ context.Context, tiers []tier.Tier) error {
	data, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("encode tiers: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write tier cache %s: %w", c.path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write tier cache %s: %w", c.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write tier cache %s: %w", c.path, err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("write tier cache %s: %w", c.path, err)
	}
	return nil
}

// RedisClient is the subset of *redis.Client used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache shares the last good table between replicas.
type RedisCache struct {
	rdb RedisClient
	key string
	ttl time.Duration
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithRedisKey sets the key the table is stored under.
func WithRedisKey(key string) RedisCacheOption {
	return func(c *RedisCache) {
		if k := strings.TrimSpace(key); k != "" {
			c.key = k
		}
	}
}

// WithRedisTTL sets the expiry of the stored table. Zero keeps it forever.
func WithRedisTTL(d time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if d >= 0 {
			c.ttl = d
		}
	}
}

// NewRedisCache wraps a redis client.
func NewRedisCache(rdb RedisClient, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		rdb: rdb,
		key: "bonus:tiers",
		ttl: 7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get reads the table. A missing key is ErrCacheMiss.
func (c *RedisCache) Get(ctx context.Context) ([]tier.Tier, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", c.key, err)
	}
	return Decode(data, FormatJSON)
}

// Put writes the table.
func (c *RedisCache) Put(ctx context.Context, tiers []tier.Tier) error {
	data, err := json.Marshal(tiers)
	if err != nil {
		return fmt.Errorf("encode tiers: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}
