package cache

import (
	"context"
	"testing"
	"time"

	"tajeryar/internal/models"
	"tajeryar/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestNewRedisClient_DisabledWithoutAddr(t *testing.T) {
	rdb := NewRedisClient(context.Background(), &config.RedisConfig{}, zaptest.NewLogger(t))
	assert.Nil(t, rdb)
	assert.Nil(t, NewStatsCache(rdb, time.Minute, zaptest.NewLogger(t)))
}

func TestStatsCache_NilIsNoop(t *testing.T) {
	var c *StatsCache
	ctx := context.Background()
	id := uuid.New()

	c.Set(ctx, id, &models.TransactionStats{Total: 1})
	c.Invalidate(ctx, id)
	stats, ok := c.Get(ctx, id)
	assert.Nil(t, stats)
	assert.False(t, ok)
}

func TestStatsCache_UnreachableServerIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	c := NewStatsCache(rdb, time.Minute, zaptest.NewLogger(t))
	_, ok := c.Get(context.Background(), uuid.New())
	assert.False(t, ok)
}

func TestStatsKey(t *testing.T) {
	id := uuid.MustParse("5f0c7c1e-8d4c-4a7e-9a51-2d8f0f1b6c3a")
	assert.Equal(t, "tajeryar:stats:5f0c7c1e-8d4c-4a7e-9a51-2d8f0f1b6c3a", statsKey(id))
}
