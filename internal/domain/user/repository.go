package user

import (
	"context"
)

// Repository 用户仓储接口
// 接口定义在domain层,具体实现在infrastructure/persistence/mysql
type Repository interface {
	// Create 创建用户,邮箱已存在返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// LockByID SELECT ... FOR UPDATE,同一读者的借出互斥
	LockByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	Update(ctx context.Context, user *User) error

	// Delete 墓碑删除,释放邮箱
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, page, pageSize int) ([]*User, int64, error)
}
