package shelf

import (
	"context"
)

// Repository 书架仓储接口
type Repository interface {
	Create(ctx context.Context, shelf *Shelf) error
	FindByID(ctx context.Context, id uint) (*Shelf, error)

	// LockByID SELECT ... FOR UPDATE
	LockByID(ctx context.Context, id uint) (*Shelf, error)

	// ExistsByName excludeID用于更新时排除自身
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)

	// Update 更新名称与容量(不写AvailableCapacity)
	Update(ctx context.Context, shelf *Shelf) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, page, pageSize int) ([]*Shelf, int64, error)

	// SetAvailableCapacity 仅修正任务调用
	SetAvailableCapacity(ctx context.Context, id uint, capacity int) error
}
