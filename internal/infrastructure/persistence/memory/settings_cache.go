// Package memory 进程内存实现（cache.driver=memory，单实例部署或本地开发）
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/xiebiao/library/internal/domain/settings"
)

type entry struct {
	value     string
	expiresAt time.Time // 零值表示不过期
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// SettingsCache 设置项缓存
type SettingsCache struct {
	mu      sync.RWMutex
	entries map[settings.Key]entry
	now     func() time.Time
}

// NewSettingsCache 创建进程内设置项缓存
func NewSettingsCache() *SettingsCache {
	return &SettingsCache{
		entries: make(map[settings.Key]entry),
		now:     time.Now,
	}
}

func (c *SettingsCache) Get(_ context.Context, key settings.Key) (string, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(c.now()) {
		return "", settings.ErrCacheMiss
	}
	return e.value, nil
}

func (c *SettingsCache) Set(_ context.Context, key settings.Key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

func (c *SettingsCache) Delete(_ context.Context, key settings.Key) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
