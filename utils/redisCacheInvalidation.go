package utils

import (
	"context"
	"fmt"

	"solar-proposal-backend/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InvalidateCache deletes every key under prefix and returns how many were
// removed. SCAN keeps redis responsive on large keyspaces.
func InvalidateCache(ctx context.Context, rdb *redis.Client, prefix string) (int, error) {
	pattern := fmt.Sprintf("%s:*", prefix)
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()

	removed := 0
	for iter.Next(ctx) {
		key := iter.Val()
		if err := rdb.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete key %s: %w", key, err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("error during SCAN iteration: %w", err)
	}
	return removed, nil
}

// InvalidateCacheAsync runs InvalidateCache without blocking the caller.
func InvalidateCacheAsync(rdb *redis.Client, prefix string) {
	go func() {
		if _, err := InvalidateCache(context.Background(), rdb, prefix); err != nil {
			config.Logger.Warn("Cache invalidation failed", zap.String("prefix", prefix), zap.Error(err))
		}
	}()
}
