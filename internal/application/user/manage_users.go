package user

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/user"
)

// GetUserUseCase 查询用户(个人信息)
type GetUserUseCase struct {
	userRepo user.Repository
}

// NewGetUserUseCase 创建查询用例
func NewGetUserUseCase(userRepo user.Repository) *GetUserUseCase {
	return &GetUserUseCase{userRepo: userRepo}
}

// Execute 执行查询
func (uc *GetUserUseCase) Execute(ctx context.Context, id uint) (*UserResponse, error) {
	u, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// ListUsersUseCase 用户列表(馆员)
type ListUsersUseCase struct {
	userRepo user.Repository
}

// NewListUsersUseCase 创建列表用例
func NewListUsersUseCase(userRepo user.Repository) *ListUsersUseCase {
	return &ListUsersUseCase{userRepo: userRepo}
}

// ListUsersResponse 列表响应
type ListUsersResponse struct {
	Items []*UserResponse
	Total int64
}

// Execute 执行查询
func (uc *ListUsersUseCase) Execute(ctx context.Context, page, pageSize int) (*ListUsersResponse, error) {
	list, total, err := uc.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]*UserResponse, len(list))
	for i, u := range list {
		items[i] = toUserResponse(u)
	}
	return &ListUsersResponse{Items: items, Total: total}, nil
}

// DeleteUserUseCase 删除用户
// 业务规则：只有管理员可以删除馆员与管理员账号
type DeleteUserUseCase struct {
	userRepo user.Repository
	tx       application.Transactor
}

// NewDeleteUserUseCase 创建删除用例
func NewDeleteUserUseCase(userRepo user.Repository, tx application.Transactor) *DeleteUserUseCase {
	return &DeleteUserUseCase{userRepo: userRepo, tx: tx}
}

// DeleteUserRequest 删除请求
type DeleteUserRequest struct {
	UserID    uint
	ActorRole user.Role
}

// Execute 执行删除
func (uc *DeleteUserUseCase) Execute(ctx context.Context, req DeleteUserRequest) (err error) {
	ctx, done := application.StartOperation(ctx, "delete_user", attribute.Int("user_id", int(req.UserID)))
	defer func() { done(err) }()

	return uc.tx.Transaction(ctx, func(ctx context.Context) error {
		u, err := uc.userRepo.LockByID(ctx, req.UserID)
		if err != nil {
			return err
		}
		if err := u.CheckDeletableBy(req.ActorRole); err != nil {
			return err
		}
		return uc.userRepo.Delete(ctx, u.ID)
	})
}
