package shelf

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// CreateShelfUseCase 新建书架
// 名称唯一;剩余容量初始等于容量
type CreateShelfUseCase struct {
	shelfRepo shelf.Repository
}

// NewCreateShelfUseCase 创建用例
func NewCreateShelfUseCase(shelfRepo shelf.Repository) *CreateShelfUseCase {
	return &CreateShelfUseCase{shelfRepo: shelfRepo}
}

// CreateShelfRequest 新建请求
type CreateShelfRequest struct {
	Name     string
	Capacity int
}

// Execute 执行新建
func (uc *CreateShelfUseCase) Execute(ctx context.Context, req CreateShelfRequest) (resp *ShelfResponse, err error) {
	ctx, done := application.StartOperation(ctx, "create_shelf", attribute.String("name", req.Name))
	defer func() { done(err) }()

	s, err := shelf.NewShelf(req.Name, req.Capacity)
	if err != nil {
		return nil, err
	}
	exists, err := uc.shelfRepo.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shelf.ErrShelfNameDuplicate
	}
	// 并发创建同名书架由唯一索引兜底
	if err := uc.shelfRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toShelfResponse(s), nil
}

// ShelfResponse 书架
type ShelfResponse struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Capacity          int       `json:"capacity"`
	AvailableCapacity int       `json:"available_capacity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toShelfResponse(s *shelf.Shelf) *ShelfResponse {
	return &ShelfResponse{
		ID:                s.ID,
		Name:              s.Name,
		Capacity:          s.Capacity,
		AvailableCapacity: s.AvailableCapacity,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
