package reservation

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// Repository 预约仓储接口
// "待处理"指completed=false
type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	FindByID(ctx context.Context, id uint) (*Reservation, error)

	// LockByID SELECT ... FOR UPDATE
	LockByID(ctx context.Context, id uint) (*Reservation, error)
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id uint) error

	// ExistsPendingByUserFrom 用户是否有日期 >= date 的待处理预约
	ExistsPendingByUserFrom(ctx context.Context, userID uint, date calendar.Date) (bool, error)

	// ExistsPendingByUserCreatedAfter 用户是否有创建时间晚于since的待处理预约
	ExistsPendingByUserCreatedAfter(ctx context.Context, userID uint, since time.Time) (bool, error)

	// CountPendingByBookBetween 日期在[from, to)内、且不属于excludeUserID的待处理预约数
	CountPendingByBookBetween(ctx context.Context, bookID uint, from, to calendar.Date, excludeUserID uint) (int64, error)

	// CountPendingByBookFrom 日期 >= date 的待处理预约数,excludeID排除某个预约自身
	CountPendingByBookFrom(ctx context.Context, bookID uint, date calendar.Date, excludeID uint) (int64, error)

	// CompletePending 将用户对该书的所有待处理预约置为完成,返回影响行数
	CompletePending(ctx context.Context, bookID, userID uint) (int64, error)

	List(ctx context.Context, params ListParams) ([]*Reservation, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	UserID   uint // 0表示全部
	BookID   uint // 0表示全部
	Page     int
	PageSize int
}
