package lending

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/settings"
)

// ReturnBookUseCase 还书用例
// 有未付滞纳金时拒绝归还(MustPayLateFee),必须先调用缴费
type ReturnBookUseCase struct {
	lendRepo  lending.Repository
	settings  settings.Service
	tx        application.Transactor
	publisher event.Publisher
	now       func() time.Time
}

// NewReturnBookUseCase 创建还书用例
func NewReturnBookUseCase(
	lendRepo lending.Repository,
	settingsService settings.Service,
	tx application.Transactor,
	publisher event.Publisher,
) *ReturnBookUseCase {
	return &ReturnBookUseCase{
		lendRepo:  lendRepo,
		settings:  settingsService,
		tx:        tx,
		publisher: publisher,
		now:       time.Now,
	}
}

// Execute 执行还书
func (uc *ReturnBookUseCase) Execute(ctx context.Context, transactionID string) (resp *TransactionResponse, err error) {
	ctx, done := application.StartOperation(ctx, "return_book", attribute.String("transaction_id", transactionID))
	defer func() { done(err) }()

	feePerDay, err := uc.settings.LateFeePerDay(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var events event.Recorder
	var t *lending.Transaction

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		t, err = uc.lendRepo.LockByID(ctx, transactionID)
		if err != nil {
			return err
		}

		outstanding := t.LateFee(calendar.Of(now), feePerDay)
		if err := t.Return(now, outstanding); err != nil {
			return err
		}
		if err := uc.lendRepo.Update(ctx, t); err != nil {
			return err
		}

		events.Record(event.BookAvailabilityChanged(t.BookID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(ctx, uc.publisher)
	return toTransactionResponse(t), nil
}
