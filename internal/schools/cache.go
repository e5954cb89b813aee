package schools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "schools:"

// Cache is a Redis read-through cache in front of another Source. Entries are
// keyed by the requested division groups.
type Cache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(client *redis.Client, source Source, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, source: source, ttl: ttl, logger: logger}
}

// Schools implements Source by delegating to Load.
func (c *Cache) Schools(ctx context.Context, divisions ...string) ([]*School, error) {
	return c.Load(ctx, divisions...)
}

// Load returns cached schools for divisions, falling back to Reload on a miss
// or an unreadable entry.
func (c *Cache) Load(ctx context.Context, divisions ...string) ([]*School, error) {
	key := cacheKey(divisions)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []map[string]any
		if jsonErr := json.Unmarshal(val, &records); jsonErr == nil {
			c.logger.Debug("school cache hit", zap.String("key", key), zap.Int("count", len(records)))
			return Decode(records)
		}
		c.logger.Warn("discarding unreadable school cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
		c.logger.Debug("school cache miss", zap.String("key", key))
	default:
		c.logger.Warn("school cache unavailable", zap.String("key", key), zap.Error(err))
	}

	return c.Reload(ctx, divisions...)
}

// Reload fetches from the underlying source and replaces the cache entry.
// A failed cache write is logged and does not fail the load.
func (c *Cache) Reload(ctx context.Context, divisions ...string) ([]*School, error) {
	list, err := c.source.Schools(ctx, divisions...)
	if err != nil {
		return nil, fmt.Errorf("reload schools: %w", err)
	}

	key := cacheKey(divisions)
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode schools for cache: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("school cache write failed", zap.String("key", key), zap.Error(err))
	}

	return list, nil
}

// Invalidate drops the cache entry for divisions.
func (c *Cache) Invalidate(ctx context.Context, divisions ...string) error {
	if err := c.client.Del(ctx, cacheKey(divisions)).Err(); err != nil {
		return fmt.Errorf("invalidate school cache: %w", err)
	}
	return nil
}

func cacheKey(divisions []string) string {
	if len(divisions) == 0 {
		return cacheKeyPrefix + "all"
	}
	keys := make([]string, len(divisions))
	for i, d := range divisions {
		keys[i] = strings.ToLower(strings.TrimSpace(d))
	}
	sort.Strings(keys)
	return cacheKeyPrefix + strings.Join(keys, "|")
}
