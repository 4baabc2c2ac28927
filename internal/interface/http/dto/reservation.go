package dto

import "github.com/xiebiao/library/internal/domain/calendar"

// ReservationRequest 预约或改期请求
// date格式：2006-01-02
type ReservationRequest struct {
	Date calendar.Date `json:"date" swaggertype:"string" example:"2024-05-20"`
}

// ListReservationsRequest 预约列表查询
// 读者只能看到自己的预约；馆员可按user_id筛选
type ListReservationsRequest struct {
	PageQuery
	UserID uint `form:"user_id" example:"2"`
	BookID uint `form:"book_id" example:"1"`
}
