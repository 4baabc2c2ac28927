package book

import (
	"context"
)

// Repository 图书仓储接口
// 由domain层定义,infrastructure层实现;所有方法通过ctx参与调用方的事务
type Repository interface {
	// Create 创建图书,ISBN重复返回ErrISBNDuplicate
	Create(ctx context.Context, book *Book) error

	// FindByID 根据ID查找图书(已删除视为不存在)
	FindByID(ctx context.Context, id uint) (*Book, error)

	// LockByID SELECT ... FOR UPDATE,必须在事务中调用
	LockByID(ctx context.Context, id uint) (*Book, error)

	// ExistsByISBN 是否存在该ISBN的在架图书,excludeID用于更新时排除自身
	ExistsByISBN(ctx context.Context, isbn string, excludeID uint) (bool, error)

	// Update 更新图书基本信息、总量与书架(不写AvailableCount)
	Update(ctx context.Context, book *Book) error

	// Delete 删除图书(墓碑删除,释放ISBN)
	Delete(ctx context.Context, id uint) error

	// List 分页查询
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)

	// CountByShelf 书架上的图书数
	CountByShelf(ctx context.Context, shelfID uint) (int64, error)

	// SetAvailableCount 写入可借数量(仅修正任务调用)
	SetAvailableCount(ctx context.Context, id uint, count int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索标题、作者、ISBN
	ShelfID  uint   // 非0时只查该书架
}
