package reservation

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/reservation"
)

// ListReservationsUseCase 预约列表(当前用户的预约,或馆员按图书查询)
type ListReservationsUseCase struct {
	reservationRepo reservation.Repository
}

// NewListReservationsUseCase 创建列表用例
func NewListReservationsUseCase(reservationRepo reservation.Repository) *ListReservationsUseCase {
	return &ListReservationsUseCase{reservationRepo: reservationRepo}
}

// ListReservationsRequest 列表请求
type ListReservationsRequest struct {
	UserID   uint
	BookID   uint
	Page     int
	PageSize int
}

// ListReservationsResponse 列表响应
type ListReservationsResponse struct {
	Items []*ReservationResponse
	Total int64
}

// Execute 执行查询
func (uc *ListReservationsUseCase) Execute(ctx context.Context, req ListReservationsRequest) (*ListReservationsResponse, error) {
	list, total, err := uc.reservationRepo.List(ctx, reservation.ListParams{
		UserID:   req.UserID,
		BookID:   req.BookID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*ReservationResponse, len(list))
	for i, r := range list {
		items[i] = toReservationResponse(r)
	}
	return &ListReservationsResponse{Items: items, Total: total}, nil
}

// ReservationResponse 预约
type ReservationResponse struct {
	ID              uint          `json:"id"`
	BookID          uint          `json:"book_id"`
	UserID          uint          `json:"user_id"`
	ReservationDate calendar.Date `json:"reservation_date"`
	Completed       bool          `json:"completed"`
	CreatedAt       time.Time     `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:              r.ID,
		BookID:          r.BookID,
		UserID:          r.UserID,
		ReservationDate: r.ReservationDate,
		Completed:       r.Completed,
		CreatedAt:       r.CreatedAt,
	}
}
