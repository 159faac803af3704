// Package cache keeps per-user transaction statistics in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tajeryar/internal/models"
	"tajeryar/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis. It returns nil when no address is
// configured or the server does not answer, which disables caching.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		logger.Warn("REDIS_ADDR is not set, stats caching is disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis, stats caching is disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return rdb
}

type StatsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache returns nil for a nil client so callers can treat a disabled
// cache and a missing one alike.
func NewStatsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	if rdb == nil {
		return nil
	}
	return &StatsCache{rdb: rdb, ttl: ttl, logger: logger}
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("tajeryar:stats:%s", userID)
}

// Get returns the cached stats, or false on a miss or any Redis error.
func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID) (*models.TransactionStats, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read stats cache", zap.Error(err))
		}
		return nil, false
	}

	var stats models.TransactionStats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.logger.Warn("Corrupt stats cache entry", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, userID uuid.UUID, stats *models.TransactionStats) {
	if c == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statsKey(userID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write stats cache", zap.Error(err))
	}
}

// Invalidate drops the cached stats after a write.
func (c *StatsCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, statsKey(userID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate stats cache", zap.Error(err))
	}
}
