package reservation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
)

// ReserveBookUseCase 预约图书
// 业务规则(按顺序检查):
//  1. 预约日期不能早于今天
//  2. 读者已有今天或之后的待处理预约 → AlreadyHasReservation
//  3. 读者7天内创建过未完成的预约 → HasUncompletedReservation(冷却期)
//  4. 推算该日期没有剩余副本 → NotAvailableForDate
//
// 图书行锁串行化同一本书的预约推算,读者行锁串行化同一读者的预约
// 两把锁按 图书 → 读者 的顺序获取,与借出用例相同
type ReserveBookUseCase struct {
	bookRepo        book.Repository
	userRepo        user.Repository
	lendRepo        lending.Repository
	reservationRepo reservation.Repository
	tx              application.Transactor
	now             func() time.Time
}

// NewReserveBookUseCase 创建预约用例
func NewReserveBookUseCase(
	bookRepo book.Repository,
	userRepo user.Repository,
	lendRepo lending.Repository,
	reservationRepo reservation.Repository,
	tx application.Transactor,
) *ReserveBookUseCase {
	return &ReserveBookUseCase{
		bookRepo:        bookRepo,
		userRepo:        userRepo,
		lendRepo:        lendRepo,
		reservationRepo: reservationRepo,
		tx:              tx,
		now:             time.Now,
	}
}

// ReserveBookRequest 预约请求
type ReserveBookRequest struct {
	BookID uint
	UserID uint // 当前登录用户
	Date   calendar.Date
}

// Execute 执行预约
func (uc *ReserveBookUseCase) Execute(ctx context.Context, req ReserveBookRequest) (resp *ReservationResponse, err error) {
	ctx, done := application.StartOperation(ctx, "reserve_book",
		attribute.Int("book_id", int(req.BookID)),
		attribute.String("date", req.Date.String()),
	)
	defer func() { done(err) }()

	now := uc.now()
	today := calendar.Of(now)
	if err := reservation.CheckDate(req.Date, today); err != nil {
		return nil, err
	}

	var created *reservation.Reservation
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		// 加锁顺序与借出一致:先图书后读者
		b, err := uc.bookRepo.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		u, err := uc.userRepo.LockByID(ctx, req.UserID)
		if err != nil {
			return err
		}

		has, err := uc.reservationRepo.ExistsPendingByUserFrom(ctx, u.ID, today)
		if err != nil {
			return err
		}
		if has {
			return reservation.ErrAlreadyHasReservation
		}

		recent, err := uc.reservationRepo.ExistsPendingByUserCreatedAfter(ctx, u.ID, reservation.CoolDownSince(now))
		if err != nil {
			return err
		}
		if recent {
			return reservation.ErrHasUncompletedReservation
		}

		projection, err := project(ctx, uc.lendRepo, uc.reservationRepo, b, req.Date, 0)
		if err != nil {
			return err
		}
		if err := projection.Check(); err != nil {
			return err
		}

		created = reservation.NewReservation(b.ID, u.ID, req.Date, now)
		return uc.reservationRepo.Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	return toReservationResponse(created), nil
}

// project 推算图书在date的剩余副本,excludeID排除正在修改的预约自身
func project(
	ctx context.Context,
	lendRepo lending.Repository,
	reservationRepo reservation.Repository,
	b *book.Book,
	date calendar.Date,
	excludeID uint,
) (reservation.Projection, error) {
	unreturned, err := lendRepo.CountUnreturnedByBook(ctx, b.ID)
	if err != nil {
		return reservation.Projection{}, err
	}
	returning, err := lendRepo.CountUnreturnedByBookDueBy(ctx, b.ID, date)
	if err != nil {
		return reservation.Projection{}, err
	}
	reserved, err := reservationRepo.CountPendingByBookFrom(ctx, b.ID, date, excludeID)
	if err != nil {
		return reservation.Projection{}, err
	}
	return reservation.Projection{
		AvailableCount: b.EffectiveAvailable(unreturned),
		ReturningBy:    returning,
		ReservedFrom:   reserved,
	}, nil
}
