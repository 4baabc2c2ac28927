package book

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// CreateBookUseCase 新书上架
// 业务规则:
//  1. ISBN格式正确且在架图书中唯一
//  2. 目标书架还有空位(书架行锁内按实际图书数判断)
//  3. 可借数量初始等于总量
//
// 提交后通知修正书架剩余容量
type CreateBookUseCase struct {
	bookRepo  book.Repository
	shelfRepo shelf.Repository
	tx        application.Transactor
	publisher event.Publisher
}

// NewCreateBookUseCase 创建上架用例
func NewCreateBookUseCase(
	bookRepo book.Repository,
	shelfRepo shelf.Repository,
	tx application.Transactor,
	publisher event.Publisher,
) *CreateBookUseCase {
	return &CreateBookUseCase{bookRepo: bookRepo, shelfRepo: shelfRepo, tx: tx, publisher: publisher}
}

// CreateBookRequest 上架请求
type CreateBookRequest struct {
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Description string
	TotalCount  int
	ShelfID     uint
}

// Execute 执行上架
func (uc *CreateBookUseCase) Execute(ctx context.Context, req CreateBookRequest) (resp *BookResponse, err error) {
	ctx, done := application.StartOperation(ctx, "create_book",
		attribute.String("isbn", req.ISBN),
		attribute.Int("shelf_id", int(req.ShelfID)),
	)
	defer func() { done(err) }()

	isbn, err := book.NormalizeISBN(req.ISBN)
	if err != nil {
		return nil, err
	}
	if req.TotalCount < 1 {
		return nil, book.ErrInvalidCount
	}

	var events event.Recorder
	var created *book.Book
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		s, err := uc.shelfRepo.LockByID(ctx, req.ShelfID)
		if err != nil {
			return err
		}
		count, err := uc.bookRepo.CountByShelf(ctx, s.ID)
		if err != nil {
			return err
		}
		if err := s.CheckRoomFor(count); err != nil {
			return err
		}

		exists, err := uc.bookRepo.ExistsByISBN(ctx, isbn, 0)
		if err != nil {
			return err
		}
		if exists {
			return book.ErrISBNDuplicate
		}

		created = book.NewBook(isbn, req.Title, req.Author, req.Publisher, req.Description, req.TotalCount, s.ID)
		if err := uc.bookRepo.Create(ctx, created); err != nil {
			return err
		}
		events.Record(event.ShelfCapacityChanged(s.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(ctx, uc.publisher)
	return toBookResponse(created), nil
}

// BookResponse 图书
type BookResponse struct {
	ID             uint      `json:"id"`
	ISBN           string    `json:"isbn"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Publisher      string    `json:"publisher"`
	Description    string    `json:"description,omitempty"`
	TotalCount     int       `json:"total_count"`
	AvailableCount int       `json:"available_count"`
	ShelfID        uint      `json:"shelf_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toBookResponse(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:             b.ID,
		ISBN:           b.ISBN,
		Title:          b.Title,
		Author:         b.Author,
		Publisher:      b.Publisher,
		Description:    b.Description,
		TotalCount:     b.TotalCount,
		AvailableCount: b.AvailableCount,
		ShelfID:        b.ShelfID,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}
