package settings

import (
	"context"
	"errors"
	"time"
)

// Repository 设置项仓储
type Repository interface {
	// Get 不存在时返回ErrSettingNotFound
	Get(ctx context.Context, key Key) (*Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
}

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("settings: cache miss")

// Cache 设置项缓存
// 写操作先失效缓存再写库,读操作未命中时回源并回填
type Cache interface {
	// Get 未命中返回ErrCacheMiss
	Get(ctx context.Context, key Key) (string, error)
	Set(ctx context.Context, key Key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key Key) error
}
