package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. 一本Book代表同一ISBN的若干册副本,副本不单独建模,只记录总量TotalCount
// 2. AvailableCount是派生值 = TotalCount - 未归还借阅数,只由异步修正任务写入
// 3. 每本书恰好位于一个书架(ShelfID)
type Book struct {
	ID             uint
	ISBN           string
	Title          string
	Author         string
	Publisher      string
	Description    string
	TotalCount     int
	AvailableCount int
	ShelfID        uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewBook 创建新图书(工厂方法)
// 新书没有任何借出,可借数量等于总量
func NewBook(isbn, title, author, publisher, description string, totalCount int, shelfID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:           isbn,
		Title:          title,
		Author:         author,
		Publisher:      publisher,
		Description:    description,
		TotalCount:     totalCount,
		AvailableCount: totalCount,
		ShelfID:        shelfID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAvailable 是否还有可借副本
func (b *Book) IsAvailable() bool {
	return b.AvailableCount > 0
}

// EffectiveAvailable 在行锁内计算的实际可借数量
// 修正任务是异步的,AvailableCount可能尚未反映刚提交的借出,
// 因此同时受 TotalCount - unreturned 约束
func (b *Book) EffectiveAvailable(unreturned int64) int {
	return min(b.AvailableCount, AvailableFor(b.TotalCount, unreturned))
}

// UpdateInfo 更新图书基本信息(空值不覆盖)
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// ChangeTotalCount 修改总量
// 业务规则:总量不能小于当前未归还的借出数
// 返回值表示总量是否变化(变化时需要重新计算可借数量)
func (b *Book) ChangeTotalCount(total int, unreturned int64) (bool, error) {
	if total < 1 {
		return false, ErrInvalidCount
	}
	if int64(total) < unreturned {
		return false, ErrTotalCountBelowLentCount
	}
	if total == b.TotalCount {
		return false, nil
	}
	b.TotalCount = total
	b.UpdatedAt = time.Now()
	return true, nil
}

// MoveTo 移动到另一个书架,返回原书架ID
func (b *Book) MoveTo(shelfID uint) uint {
	old := b.ShelfID
	b.ShelfID = shelfID
	b.UpdatedAt = time.Now()
	return old
}

// Reconcile 按未归还借出数重新计算可借数量,返回是否有变化
func (b *Book) Reconcile(unreturned int64) bool {
	next := AvailableFor(b.TotalCount, unreturned)
	if next == b.AvailableCount {
		return false
	}
	b.AvailableCount = next
	return true
}

// AvailableFor total - unreturned,截断到[0, total]
func AvailableFor(total int, unreturned int64) int {
	n := int64(total) - unreturned
	if n < 0 {
		return 0
	}
	if n > int64(total) {
		return total
	}
	return int(n)
}
