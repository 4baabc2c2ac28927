package shelf

import (
	"time"
)

// Shelf 书架实体
// Capacity是可以摆放的图书种数上限;AvailableCapacity = Capacity - 书架上的图书数,
// 是派生值,只由异步修正任务写入(创建时等于Capacity)
type Shelf struct {
	ID                uint
	Name              string
	Capacity          int
	AvailableCapacity int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewShelf 创建书架
func NewShelf(name string, capacity int) (*Shelf, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	now := time.Now()
	return &Shelf{
		Name:              name,
		Capacity:          capacity,
		AvailableCapacity: capacity,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// CheckCapacity 能否再放一本书
func (s *Shelf) CheckCapacity() error {
	if s.AvailableCapacity <= 0 {
		return ErrShelfFull
	}
	return nil
}

// CheckRoomFor 在行锁内判断能否再放一本书
// AvailableCapacity由修正任务异步写入,可能尚未反映刚提交的新书,
// 因此同时受 Capacity - bookCount 约束
func (s *Shelf) CheckRoomFor(bookCount int64) error {
	if int64(s.Capacity)-bookCount <= 0 {
		return ErrShelfFull
	}
	return s.CheckCapacity()
}

// ChangeCapacity 修改容量
// 业务规则:新容量不能小于书架上现有的图书数
func (s *Shelf) ChangeCapacity(capacity int, bookCount int64) (bool, error) {
	if capacity < 1 {
		return false, ErrInvalidCapacity
	}
	if bookCount > int64(capacity) {
		return false, ErrShelfWillBeFull
	}
	if capacity == s.Capacity {
		return false, nil
	}
	s.Capacity = capacity
	s.UpdatedAt = time.Now()
	return true, nil
}

// Rename 修改名称
func (s *Shelf) Rename(name string) {
	if name == "" {
		return
	}
	s.Name = name
	s.UpdatedAt = time.Now()
}

// CheckDeletable 书架上还有书时不能删除
func CheckDeletable(bookCount int64) error {
	if bookCount > 0 {
		return ErrCannotDelete
	}
	return nil
}

// Reconcile 按书架上的图书数重新计算剩余容量,返回是否有变化
func (s *Shelf) Reconcile(bookCount int64) bool {
	next := int64(s.Capacity) - bookCount
	if next < 0 {
		next = 0
	}
	if next > int64(s.Capacity) {
		next = int64(s.Capacity)
	}
	if int(next) == s.AvailableCapacity {
		return false
	}
	s.AvailableCapacity = int(next)
	return true
}
