// Package settings 全局设置用例(滞纳金费率、借期天数)
package settings

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/settings"
)

// SettingsResponse 当前设置
type SettingsResponse struct {
	LateFeePerDay decimal.Decimal `json:"late_fee_per_day"`
	LendDay       int             `json:"lend_day"`
}

// GetSettingsUseCase 读取设置
type GetSettingsUseCase struct {
	settings settings.Service
}

// NewGetSettingsUseCase 创建读取用例
func NewGetSettingsUseCase(settingsService settings.Service) *GetSettingsUseCase {
	return &GetSettingsUseCase{settings: settingsService}
}

// Execute 读取全部设置
func (uc *GetSettingsUseCase) Execute(ctx context.Context) (*SettingsResponse, error) {
	fee, err := uc.settings.LateFeePerDay(ctx)
	if err != nil {
		return nil, err
	}
	days, err := uc.settings.LendDay(ctx)
	if err != nil {
		return nil, err
	}
	return &SettingsResponse{LateFeePerDay: fee, LendDay: days}, nil
}

// UpdateLateFeeUseCase 修改每日滞纳金
// 只影响之后的计算,已缴纳的金额不变
type UpdateLateFeeUseCase struct {
	settings settings.Service
}

// NewUpdateLateFeeUseCase 创建修改用例
func NewUpdateLateFeeUseCase(settingsService settings.Service) *UpdateLateFeeUseCase {
	return &UpdateLateFeeUseCase{settings: settingsService}
}

// Execute 执行修改
func (uc *UpdateLateFeeUseCase) Execute(ctx context.Context, fee decimal.Decimal) (err error) {
	ctx, done := application.StartOperation(ctx, "set_late_fee", attribute.String("late_fee_per_day", fee.String()))
	defer func() { done(err) }()

	return uc.settings.SetLateFeePerDay(ctx, fee)
}

// UpdateLendDayUseCase 修改借期天数
// 只影响之后的借出,已有借阅的截止日期不变
type UpdateLendDayUseCase struct {
	settings settings.Service
}

// NewUpdateLendDayUseCase 创建修改用例
func NewUpdateLendDayUseCase(settingsService settings.Service) *UpdateLendDayUseCase {
	return &UpdateLendDayUseCase{settings: settingsService}
}

// Execute 执行修改
func (uc *UpdateLendDayUseCase) Execute(ctx context.Context, days int) (err error) {
	ctx, done := application.StartOperation(ctx, "set_lend_day", attribute.Int("lend_day", days))
	defer func() { done(err) }()

	return uc.settings.SetLendDay(ctx, days)
}
