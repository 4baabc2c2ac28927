package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/settings"
	"github.com/xiebiao/library/internal/domain/user"
)

// LendBookUseCase 借书用例
// 业务规则(按顺序检查):
//  0. 图书、读者、经办馆员都必须存在,否则NotFound
//  1. 图书必须有可借副本,否则NotAvailable
//  2. 借期内其他读者的待处理预约占满可借副本时,HasReservation
//  3. 读者没有未归还的借阅,否则AlreadyLent
//
// 并发控制:先锁图书行再锁读者行,最后一本书的并发借出由行锁串行化,
// 后到的事务看到未归还数已增加,返回NotAvailable
type LendBookUseCase struct {
	bookRepo        book.Repository
	userRepo        user.Repository
	lendRepo        lending.Repository
	reservationRepo reservation.Repository
	settings        settings.Service
	tx              application.Transactor
	publisher       event.Publisher
	now             func() time.Time
	newID           func() string
}

// NewLendBookUseCase 创建借书用例
func NewLendBookUseCase(
	bookRepo book.Repository,
	userRepo user.Repository,
	lendRepo lending.Repository,
	reservationRepo reservation.Repository,
	settingsService settings.Service,
	tx application.Transactor,
	publisher event.Publisher,
) *LendBookUseCase {
	return &LendBookUseCase{
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		lendRepo:        lendRepo,
		reservationRepo: reservationRepo,
		settings:        settingsService,
		tx:              tx,
		publisher:       publisher,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// LendBookRequest 借书请求
type LendBookRequest struct {
	BookID   uint
	UserID   uint // 借阅人
	LenderID uint // 当前登录的馆员
}

// Execute 执行借书
func (uc *LendBookUseCase) Execute(ctx context.Context, req LendBookRequest) (resp *TransactionResponse, err error) {
	ctx, done := application.StartOperation(ctx, "lend_book",
		attribute.Int("book_id", int(req.BookID)),
		attribute.Int("user_id", int(req.UserID)),
	)
	defer func() { done(err) }()

	// 借期在事务外读取(有缓存)
	lendDays, err := uc.settings.LendDay(ctx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	today := calendar.Of(now)
	var events event.Recorder
	var created *lending.Transaction

	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		// 1. 锁定图书,再锁定读者(与预约用例的加锁顺序相同)
		b, err := uc.bookRepo.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		u, err := uc.userRepo.LockByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if _, err := uc.userRepo.FindByID(ctx, req.LenderID); err != nil {
			return err
		}

		// 2. 可借副本
		unreturned, err := uc.lendRepo.CountUnreturnedByBook(ctx, b.ID)
		if err != nil {
			return err
		}
		available := b.EffectiveAvailable(unreturned)
		if available <= 0 {
			return lending.ErrNotAvailable
		}

		// 3. 近期预约优先于现场借阅
		held, err := uc.reservationRepo.CountPendingByBookBetween(ctx, b.ID, today, today.AddDays(lendDays), u.ID)
		if err != nil {
			return err
		}
		if reservation.BlocksLending(held, available) {
			return lending.ErrHasReservation
		}

		// 4. 一人同时只能借一本
		lent, err := uc.lendRepo.ExistsUnreturnedByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if lent {
			return lending.ErrAlreadyLent
		}

		created = lending.NewTransaction(uc.newID(), b.ID, u.ID, req.LenderID, now, lendDays)
		if err := uc.lendRepo.Create(ctx, created); err != nil {
			return err
		}

		events.Record(
			event.BookAvailabilityChanged(b.ID),
			event.ReservationShouldComplete(b.ID, u.ID),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// 事务提交后再通知修正任务
	events.Flush(ctx, uc.publisher)
	return toTransactionResponse(created), nil
}
