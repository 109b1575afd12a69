package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/insightlab/insight-engine-go/internal/models"
)

// ResultCacheEntry wraps a cached ranked list with cache metadata.
type ResultCacheEntry struct {
	List      models.RankedInsightList `json:"list"`
	CachedAt  time.Time                `json:"cached_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// ResultCacheStats tracks cache performance metrics.
type ResultCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisResultCache caches ranked insight lists in Redis, keyed by a
// fingerprint of the input tables plus the role. Identical inputs for the
// same role hit the cache; any change to the data produces a new key.
type RedisResultCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ResultCacheStats
	prefix string
	logger *logrus.Logger
}

// NewRedisResultCache creates a new Redis-backed result cache.
func NewRedisResultCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisResultCache {
	return &RedisResultCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ResultCacheStats{},
		prefix: "insight_result:",
		logger: logger,
	}
}

// GetResult retrieves a cached ranked list for the given tables and role.
func (c *RedisResultCache) GetResult(ctx context.Context, tables map[string]*models.Table, roleID string) (*models.RankedInsightList, bool) {
	cacheKey := c.prefix + Fingerprint(tables, roleID)

	data, err := c.redis.Get(ctx, cacheKey).Result()
	if err == redis.Nil {
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("role", roleID).Warn("Redis error getting cached result")
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	var entry ResultCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.WithError(err).WithField("role", roleID).Warn("Error deserializing cached result")
		c.stats.mu.Lock()
		c.stats.Misses++
		c.stats.mu.Unlock()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()

	return &entry.List, true
}

// SetResult stores a ranked list in Redis with the configured TTL.
func (c *RedisResultCache) SetResult(ctx context.Context, tables map[string]*models.Table, roleID string, list *models.RankedInsightList) error {
	cacheKey := c.prefix + Fingerprint(tables, roleID)

	now := time.Now()
	entry := ResultCacheEntry{
		List:      *list,
		CachedAt:  now,
		ExpiresAt: now.Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize result for role %s: %w", roleID, err)
	}

	if err := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result for role %s: %w", roleID, err)
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()

	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *RedisResultCache) Stats() (hits, misses, sets int64) {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return c.stats.Hits, c.stats.Misses, c.stats.Sets
}

// Fingerprint derives a stable key from the table contents and the role.
// Tables and columns are walked in sorted order so the same data always
// hashes to the same key regardless of map iteration order.
func Fingerprint(tables map[string]*models.Table, roleID string) string {
	h := sha256.New()
	fmt.Fprintf(h, "role=%s;", roleID)

	tableIDs := make([]string, 0, len(tables))
	for id := range tables {
		tableIDs = append(tableIDs, id)
	}
	sort.Strings(tableIDs)

	for _, id := range tableIDs {
		table := tables[id]
		fmt.Fprintf(h, "table=%s;time=%s;group=%s;", id, table.TimeColumn, table.GroupColumn)
		for _, col := range table.Columns {
			fmt.Fprintf(h, "col=%s:%s:%s;", col.Name, col.Type, col.Unit)
			for _, v := range col.Values {
				fmt.Fprintf(h, "%v,", v)
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))[:32]
}
