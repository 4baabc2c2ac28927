package shelf

import (
	"context"

	"github.com/xiebiao/library/internal/domain/shelf"
)

// GetShelfUseCase 书架详情
type GetShelfUseCase struct {
	shelfRepo shelf.Repository
}

func NewGetShelfUseCase(shelfRepo shelf.Repository) *GetShelfUseCase {
	return &GetShelfUseCase{shelfRepo: shelfRepo}
}

func (uc *GetShelfUseCase) Execute(ctx context.Context, id uint) (*ShelfResponse, error) {
	s, err := uc.shelfRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toShelfResponse(s), nil
}

// ListShelvesUseCase 书架列表
type ListShelvesUseCase struct {
	shelfRepo shelf.Repository
}

func NewListShelvesUseCase(shelfRepo shelf.Repository) *ListShelvesUseCase {
	return &ListShelvesUseCase{shelfRepo: shelfRepo}
}

// ListShelvesResponse 列表响应
type ListShelvesResponse struct {
	Items []*ShelfResponse
	Total int64
}

func (uc *ListShelvesUseCase) Execute(ctx context.Context, page, pageSize int) (*ListShelvesResponse, error) {
	list, total, err := uc.shelfRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	items := make([]*ShelfResponse, len(list))
	for i, s := range list {
		items[i] = toShelfResponse(s)
	}
	return &ListShelvesResponse{Items: items, Total: total}, nil
}
