package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/summitapp/summit-api/internal/config"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

const snapshotTTL = 5 * time.Minute

// Init connects the snapshot cache. Returns nil gracefully when no Redis is
// configured (dev mode): every cache call becomes a no-op miss.
func Init(cfg *config.Config) error {
	if cfg.RedisAddr == "" {
		config.Logger.Info("cache: no REDIS_ADDR configured, stats snapshot cache disabled")
		client = nil
		return nil
	}

	c := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if _, err := c.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache: ping failed: %w", err)
	}

	client = c
	config.Logger.Infof("cache: connected to %s", cfg.RedisAddr)
	return nil
}

func UserStatsKey(userID uint) string { return fmt.Sprintf("stats:user:%d", userID) }
func GoalStatsKey(goalID uint) string { return fmt.Sprintf("stats:goal:%d", goalID) }

// GetSnapshot loads a cached stats row into dest. Returns false on miss,
// error, or disabled cache.
func GetSnapshot(key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		client.Del(ctx, key)
		return false
	}
	return true
}

func SetSnapshot(key string, value interface{}) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, snapshotTTL).Err(); err != nil {
		config.Logger.Warnf("cache: failed to store %s: %v", key, err)
	}
}

// Invalidate drops cached snapshots after an aggregate update.
func Invalidate(keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		config.Logger.Warnf("cache: failed to invalidate: %v", err)
	}
}
