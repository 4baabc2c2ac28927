package lending

import (
	"context"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// Repository 借阅记录仓储接口
type Repository interface {
	Create(ctx context.Context, tx *Transaction) error
	FindByID(ctx context.Context, id string) (*Transaction, error)

	// LockByID SELECT ... FOR UPDATE(归还与缴费互斥)
	LockByID(ctx context.Context, id string) (*Transaction, error)

	// Update 更新归还状态与已付滞纳金
	Update(ctx context.Context, tx *Transaction) error

	// ExistsUnreturnedByUser 用户是否有未归还的借阅
	ExistsUnreturnedByUser(ctx context.Context, userID uint) (bool, error)

	// CountUnreturnedByBook 图书未归还的借出数
	CountUnreturnedByBook(ctx context.Context, bookID uint) (int64, error)

	// CountUnreturnedByBookDueBy 截止日期 <= date 的未归还借出数
	// 预约日期之前应当归还的副本
	CountUnreturnedByBookDueBy(ctx context.Context, bookID uint, date calendar.Date) (int64, error)

	List(ctx context.Context, params ListParams) ([]*Transaction, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	UserID   uint  // 0表示全部用户
	Returned *bool // nil表示不过滤
	Page     int
	PageSize int
}
