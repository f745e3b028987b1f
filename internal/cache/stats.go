// Package cache provides an optional redis-backed cache for storage
// statistics, which are otherwise recomputed from a full listing per call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bucketkit/bucketkit/internal/config"
	"github.com/bucketkit/bucketkit/internal/objectstore"
)

const (
	statsKey        = "bucketkit:storage:stats"
	defaultStatsTTL = time.Minute
)

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache builds a redis-backed objectstore.StatsCache from cfg, or
// nil when caching is disabled (nil means recompute-per-call).
func NewStatsCache(cfg config.CacheConfig) (objectstore.StatsCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.StatsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultStatsTTL
	}

	return &redisStatsCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *redisStatsCache) GetStats(ctx context.Context) (*objectstore.StorageStats, bool, error) {
	payload, err := c.client.Get(ctx, statsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var stats objectstore.StorageStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, false, fmt.Errorf("decode storage stats cache: %w", err)
	}

	return &stats, true, nil
}

func (c *redisStatsCache) SetStats(ctx context.Context, stats *objectstore.StorageStats) error {
	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode storage stats cache: %w", err)
	}

	if err := c.client.Set(ctx, statsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Invalidate drops the cached stats so the next read recomputes.
func (c *redisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
