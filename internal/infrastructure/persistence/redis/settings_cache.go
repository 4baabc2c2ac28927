package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/domain/settings"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/metrics"
)

// SettingsCache 设置项缓存（Cache-Aside）
// Key：settings:{key}
// Redis连续失败后熔断，设置服务直接回源数据库
type SettingsCache struct {
	client  *redis.Client
	breaker *circuitbreaker.CircuitBreaker
}

// NewSettingsCache 创建设置项缓存
func NewSettingsCache(client *redis.Client, log *slog.Logger) *SettingsCache {
	breaker := circuitbreaker.New("redis-settings", circuitbreaker.Config{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		IsFailure: func(err error) bool {
			return !errors.Is(err, settings.ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
	return &SettingsCache{client: client, breaker: breaker}
}

// Get 未命中返回settings.ErrCacheMiss
func (c *SettingsCache) Get(ctx context.Context, key settings.Key) (string, error) {
	var value string
	err := c.breaker.Execute(func() error {
		v, err := c.client.Get(ctx, settingsKey(key)).Result()
		if errors.Is(err, redis.Nil) {
			return settings.ErrCacheMiss
		}
		value = v
		return err
	})
	if err != nil {
		return "", c.wrap(err, "读取设置缓存失败")
	}
	return value, nil
}

// Set 写入缓存
func (c *SettingsCache) Set(ctx context.Context, key settings.Key, value string, ttl time.Duration) error {
	err := c.breaker.Execute(func() error {
		return c.client.Set(ctx, settingsKey(key), value, ttl).Err()
	})
	if err != nil {
		return c.wrap(err, "写入设置缓存失败")
	}
	return nil
}

// Delete 失效缓存
func (c *SettingsCache) Delete(ctx context.Context, key settings.Key) error {
	err := c.breaker.Execute(func() error {
		return c.client.Del(ctx, settingsKey(key)).Err()
	})
	if err != nil {
		return c.wrap(err, "删除设置缓存失败")
	}
	return nil
}

func (c *SettingsCache) wrap(err error, message string) error {
	if errors.Is(err, settings.ErrCacheMiss) {
		return err
	}
	return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, message)
}

func settingsKey(key settings.Key) string {
	return fmt.Sprintf("settings:%s", key)
}
