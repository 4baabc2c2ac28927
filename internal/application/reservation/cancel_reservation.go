package reservation

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/reservation"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// CancelReservationUseCase 取消预约(删除),已完成的预约不可取消
type CancelReservationUseCase struct {
	reservationRepo reservation.Repository
	tx              application.Transactor
}

// NewCancelReservationUseCase 创建取消预约用例
func NewCancelReservationUseCase(reservationRepo reservation.Repository, tx application.Transactor) *CancelReservationUseCase {
	return &CancelReservationUseCase{reservationRepo: reservationRepo, tx: tx}
}

// CancelReservationRequest 取消请求
type CancelReservationRequest struct {
	ReservationID uint
	ActorID       uint
	ActorIsStaff  bool
}

// Execute 执行取消,返回被删除的预约
func (uc *CancelReservationUseCase) Execute(ctx context.Context, req CancelReservationRequest) (resp *ReservationResponse, err error) {
	ctx, done := application.StartOperation(ctx, "cancel_reservation",
		attribute.Int("reservation_id", int(req.ReservationID)),
	)
	defer func() { done(err) }()

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
		if err := r.CheckCancelable(); err != nil {
			return err
		}
		return uc.reservationRepo.Delete(ctx, r.ID)
	})
	if err != nil {
		return nil, err
	}
	return toReservationResponse(r), nil
}
