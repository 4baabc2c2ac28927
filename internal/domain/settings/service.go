package settings

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Service 全局设置(滞纳金费率、借期天数)
type Service interface {
	LateFeePerDay(ctx context.Context) (decimal.Decimal, error)
	SetLateFeePerDay(ctx context.Context, fee decimal.Decimal) error
	LendDay(ctx context.Context) (int, error)
	SetLendDay(ctx context.Context, days int) error
}

type service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService 创建设置服务
// 缓存出错只记录日志并回源数据库,不影响读写
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) Service {
	return &service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// LateFeePerDay 每日滞纳金,未设置时为0
func (s *service) LateFeePerDay(ctx context.Context) (decimal.Decimal, error) {
	raw, err := s.get(ctx, KeyLateFeePerDay, DefaultLateFeePerDay)
	if err != nil {
		return decimal.Zero, err
	}
	fee, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrCorruptedSetting
	}
	return fee, nil
}

// SetLateFeePerDay 设置每日滞纳金(保留两位小数)
func (s *service) SetLateFeePerDay(ctx context.Context, fee decimal.Decimal) error {
	if fee.IsNegative() {
		return ErrInvalidLateFee
	}
	return s.set(ctx, KeyLateFeePerDay, fee.StringFixed(2))
}

// LendDay 借期天数,未设置时为14
func (s *service) LendDay(ctx context.Context) (int, error) {
	raw, err := s.get(ctx, KeyLendDay, strconv.Itoa(DefaultLendDay))
	if err != nil {
		return 0, err
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrCorruptedSetting
	}
	return days, nil
}

// SetLendDay 设置借期天数
func (s *service) SetLendDay(ctx context.Context, days int) error {
	if days < 1 || days > 365 {
		return ErrInvalidLendDay
	}
	return s.set(ctx, KeyLendDay, strconv.Itoa(days))
}

func (s *service) get(ctx context.Context, key Key, fallback string) (string, error) {
	// 1. 查缓存
	value, err := s.cache.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.WarnContext(ctx, "读取设置缓存失败", "key", key, "error", err)
	}

	// 2. 回源数据库
	setting, err := s.repo.Get(ctx, key)
	switch {
	case errors.Is(err, ErrSettingNotFound):
		value = fallback
	case err != nil:
		return "", err
	default:
		value = setting.Value
	}

	// 3. 回填缓存
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.WarnContext(ctx, "写入设置缓存失败", "key", key, "error", err)
	}
	return value, nil
}

func (s *service) set(ctx context.Context, key Key, value string) error {
	// 先失效缓存,再写库;写库后再删一次,清掉并发读回填的旧值
	s.invalidate(ctx, key)
	if err := s.repo.Upsert(ctx, &Setting{Key: key, Value: value, UpdatedAt: time.Now()}); err != nil {
		return err
	}
	s.invalidate(ctx, key)
	return nil
}

func (s *service) invalidate(ctx context.Context, key Key) {
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WarnContext(ctx, "删除设置缓存失败", "key", key, "error", err)
	}
}
