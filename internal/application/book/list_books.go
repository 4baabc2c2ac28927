package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// GetBookUseCase 图书详情
type GetBookUseCase struct {
	bookRepo book.Repository
}

// NewGetBookUseCase 创建详情用例
func NewGetBookUseCase(bookRepo book.Repository) *GetBookUseCase {
	return &GetBookUseCase{bookRepo: bookRepo}
}

// Execute 执行查询
func (uc *GetBookUseCase) Execute(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBookResponse(b), nil
}

// ListBooksUseCase 图书列表查询用例
// 设计说明:
// 1. 支持分页、关键词搜索(标题、作者、ISBN)、按书架过滤
// 2. 列表不返回description字段(减少数据传输量)
type ListBooksUseCase struct {
	bookRepo book.Repository
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookRepo book.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{bookRepo: bookRepo}
}

// ListBooksRequest 列表查询请求
type ListBooksRequest struct {
	Page     int
	PageSize int
	Keyword  string
	ShelfID  uint
}

// ListBooksResponse 列表查询响应
type ListBooksResponse struct {
	Items []*BookResponse
	Total int64
}

// Execute 执行列表查询
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	books, total, err := uc.bookRepo.List(ctx, book.ListParams{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
		ShelfID:  req.ShelfID,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*BookResponse, len(books))
	for i, b := range books {
		item := toBookResponse(b)
		item.Description = ""
		items[i] = item
	}
	return &ListBooksResponse{Items: items, Total: total}, nil
}
