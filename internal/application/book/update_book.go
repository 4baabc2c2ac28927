package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
)

// UpdateBookUseCase 修改图书信息与总量
// 业务规则:
//  1. 总量不能小于当前未归还的借出数(TotalCountBelowLentCount)
//  2. 修改ISBN时仍需唯一
//
// 总量变化后通知修正可借数量;可借数量本身不在这里写
type UpdateBookUseCase struct {
	bookRepo  book.Repository
	lendRepo  lending.Repository
	tx        application.Transactor
	publisher event.Publisher
}

// NewUpdateBookUseCase 创建修改用例
func NewUpdateBookUseCase(
	bookRepo book.Repository,
	lendRepo lending.Repository,
	tx application.Transactor,
	publisher event.Publisher,
) *UpdateBookUseCase {
	return &UpdateBookUseCase{bookRepo: bookRepo, lendRepo: lendRepo, tx: tx, publisher: publisher}
}

// UpdateBookRequest 修改请求,零值字段不修改
type UpdateBookRequest struct {
	BookID      uint
	ISBN        string
	Title       string
	Author      string
	Publisher   string
	Description string
	TotalCount  int
}

// Execute 执行修改
func (uc *UpdateBookUseCase) Execute(ctx context.Context, req UpdateBookRequest) (resp *BookResponse, err error) {
	ctx, done := application.StartOperation(ctx, "update_book", attribute.Int("book_id", int(req.BookID)))
	defer func() { done(err) }()

	var isbn string
	if req.ISBN != "" {
		if isbn, err = book.NormalizeISBN(req.ISBN); err != nil {
			return nil, err
		}
	}

	var events event.Recorder
	var b *book.Book
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		locked, err := uc.bookRepo.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		b = locked

		if isbn != "" && isbn != b.ISBN {
			exists, err := uc.bookRepo.ExistsByISBN(ctx, isbn, b.ID)
			if err != nil {
				return err
			}
			if exists {
				return book.ErrISBNDuplicate
			}
			b.ISBN = isbn
		}
		b.UpdateInfo(req.Title, req.Author, req.Publisher, req.Description)

		if req.TotalCount != 0 {
			unreturned, err := uc.lendRepo.CountUnreturnedByBook(ctx, b.ID)
			if err != nil {
				return err
			}
			changed, err := b.ChangeTotalCount(req.TotalCount, unreturned)
			if err != nil {
				return err
			}
			if changed {
				events.Record(event.BookAvailabilityChanged(b.ID))
			}
		}
		return uc.bookRepo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	events.Flush(ctx, uc.publisher)
	return toBookResponse(b), nil
}
