package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
)

// DeleteBookUseCase 下架图书
// 有未归还的借出时不能删除;删除后ISBN可被新书复用,书架剩余容量需要修正
type DeleteBookUseCase struct {
	bookRepo  book.Repository
	lendRepo  lending.Repository
	tx        application.Transactor
	publisher event.Publisher
}

// NewDeleteBookUseCase 创建下架用例
func NewDeleteBookUseCase(
	bookRepo book.Repository,
	lendRepo lending.Repository,
	tx application.Transactor,
	publisher event.Publisher,
) *DeleteBookUseCase {
	return &DeleteBookUseCase{bookRepo: bookRepo, lendRepo: lendRepo, tx: tx, publisher: publisher}
}

// Execute 执行下架
func (uc *DeleteBookUseCase) Execute(ctx context.Context, bookID uint) (err error) {
	ctx, done := application.StartOperation(ctx, "delete_book", attribute.Int("book_id", int(bookID)))
	defer func() { done(err) }()

	var events event.Recorder
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := uc.bookRepo.LockByID(ctx, bookID)
		if err != nil {
			return err
		}
		unreturned, err := uc.lendRepo.CountUnreturnedByBook(ctx, b.ID)
		if err != nil {
			return err
		}
		if unreturned > 0 {
			return book.ErrCannotDelete
		}
		if err := uc.bookRepo.Delete(ctx, b.ID); err != nil {
			return err
		}
		events.Record(event.ShelfCapacityChanged(b.ShelfID))
		return nil
	})
	if err != nil {
		return err
	}

	events.Flush(ctx, uc.publisher)
	return nil
}
