package cache

import (
	"context"
	"fmt"

	"pantry-service/internal/infrastructure/config"
	"pantry-service/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisCache Redis 後端的萃取回應快取
// 多實例部署時用它取代記憶體快取，讓快取跨程序共享
type RedisCache struct {
	client *redis.Client
	config *config.Config
}

// NewRedisCache 創建 Redis 快取
func NewRedisCache(cfg *config.Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已初始化",
		zap.String("addr", cfg.Cache.RedisAddr),
		zap.Duration("存活時間", cfg.Cache.TTL),
	)

	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存值
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			common.LogCacheMiss("extraction", key)
			return "", fmt.Errorf("cache miss")
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	common.LogCacheHit("extraction", key)
	return data, nil
}

// Set 設置緩存值
func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, key, value, c.config.Cache.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (c *RedisCache) Close() error {
	return c.client.Close()
}
