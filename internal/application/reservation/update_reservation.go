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
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// UpdateReservationUseCase 修改预约日期
// 已完成的预约不可修改;新日期按同样的推算规则检查(排除预约自身)
type UpdateReservationUseCase struct {
	bookRepo        book.Repository
	lendRepo        lending.Repository
	reservationRepo reservation.Repository
	tx              application.Transactor
	now             func() time.Time
}

// NewUpdateReservationUseCase 创建修改预约用例
func NewUpdateReservationUseCase(
	bookRepo book.Repository,
	lendRepo lending.Repository,
	reservationRepo reservation.Repository,
	tx application.Transactor,
) *UpdateReservationUseCase {
	return &UpdateReservationUseCase{
		bookRepo:        bookRepo,
		lendRepo:        lendRepo,
		reservationRepo: reservationRepo,
		tx:              tx,
		now:             time.Now,
	}
}

// UpdateReservationRequest 修改请求
type UpdateReservationRequest struct {
	ReservationID uint
	ActorID       uint // 当前登录用户
	ActorIsStaff  bool // 馆员可以修改任何人的预约
	Date          calendar.Date
}

// Execute 执行修改
func (uc *UpdateReservationUseCase) Execute(ctx context.Context, req UpdateReservationRequest) (resp *ReservationResponse, err error) {
	ctx, done := application.StartOperation(ctx, "update_reservation",
		attribute.Int("reservation_id", int(req.ReservationID)),
		attribute.String("date", req.Date.String()),
	)
	defer func() { done(err) }()

	now := uc.now()
	if err := reservation.CheckDate(req.Date, calendar.Of(now)); err != nil {
		return nil, err
	}

	var r *reservation.Reservation
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		found, err := uc.reservationRepo.LockByID(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		r = found
		if !req.ActorIsStaff && !r.IsOwnedBy(req.ActorID) {
			return apperrors.ErrForbidden
		}
		if r.Completed {
			return reservation.ErrAlreadyCompleted
		}

		b, err := uc.bookRepo.LockByID(ctx, r.BookID)
		if err != nil {
			return err
		}
		projection, err := project(ctx, uc.lendRepo, uc.reservationRepo, b, req.Date, r.ID)
		if err != nil {
			return err
		}
		if err := projection.Check(); err != nil {
			return err
		}

		if err := r.Reschedule(req.Date, now); err != nil {
			return err
		}
		return uc.reservationRepo.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return toReservationResponse(r), nil
}
