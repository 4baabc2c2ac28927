package lending

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/settings"
)

// PayLateFeeUseCase 缴纳滞纳金
// 一次缴清当前应付金额,累计到LateFeePaid;之后继续逾期会产生新的应付金额
type PayLateFeeUseCase struct {
	lendRepo lending.Repository
	settings settings.Service
	tx       application.Transactor
	now      func() time.Time
}

// NewPayLateFeeUseCase 创建缴费用例
func NewPayLateFeeUseCase(lendRepo lending.Repository, settingsService settings.Service, tx application.Transactor) *PayLateFeeUseCase {
	return &PayLateFeeUseCase{
		lendRepo: lendRepo,
		settings: settingsService,
		tx:       tx,
		now:      time.Now,
	}
}

// PayLateFeeResponse 缴费结果
type PayLateFeeResponse struct {
	Transaction *TransactionResponse `json:"transaction"`
	Paid        decimal.Decimal      `json:"paid"`
}

// Execute 执行缴费
func (uc *PayLateFeeUseCase) Execute(ctx context.Context, transactionID string) (resp *PayLateFeeResponse, err error) {
	ctx, done := application.StartOperation(ctx, "pay_late_fee", attribute.String("transaction_id", transactionID))
	defer func() { done(err) }()

	feePerDay, err := uc.settings.LateFeePerDay(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var t *lending.Transaction
	var paid decimal.Decimal

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		t, err = uc.lendRepo.LockByID(ctx, transactionID)
		if err != nil {
			return err
		}

		paid, err = t.PayLateFee(now, t.LateFee(calendar.Of(now), feePerDay))
		if err != nil {
			return err
		}
		return uc.lendRepo.Update(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	return &PayLateFeeResponse{Transaction: toTransactionResponse(t), Paid: paid}, nil
}

// GetLateFeeUseCase 查询当前应付滞纳金(只读)
type GetLateFeeUseCase struct {
	lendRepo lending.Repository
	settings settings.Service
	now      func() time.Time
}

// NewGetLateFeeUseCase 创建查询用例
func NewGetLateFeeUseCase(lendRepo lending.Repository, settingsService settings.Service) *GetLateFeeUseCase {
	return &GetLateFeeUseCase{
		lendRepo: lendRepo,
		settings: settingsService,
		now:      time.Now,
	}
}

// LateFeeResponse 应付滞纳金
type LateFeeResponse struct {
	TransactionID string          `json:"transaction_id"`
	DeadlineDate  calendar.Date   `json:"deadline_date"`
	LateFee       decimal.Decimal `json:"late_fee"`
}

// Execute 计算应付滞纳金
func (uc *GetLateFeeUseCase) Execute(ctx context.Context, transactionID string) (*LateFeeResponse, error) {
	t, err := uc.lendRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	feePerDay, err := uc.settings.LateFeePerDay(ctx)
	if err != nil {
		return nil, err
	}

	return &LateFeeResponse{
		TransactionID: t.ID,
		DeadlineDate:  t.DeadlineDate,
		LateFee:       t.LateFee(calendar.Of(uc.now()), feePerDay),
	}, nil
}
