package book

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// MoveBookUseCase 把图书移到另一个书架
// 目标书架必须有空位;提交后两个书架的剩余容量都要修正
// 锁顺序:图书 → 目标书架
type MoveBookUseCase struct {
	bookRepo  book.Repository
	shelfRepo shelf.Repository
	tx        application.Transactor
	publisher event.Publisher
}

// NewMoveBookUseCase 创建移动用例
func NewMoveBookUseCase(
	bookRepo book.Repository,
	shelfRepo shelf.Repository,
	tx application.Transactor,
	publisher event.Publisher,
) *MoveBookUseCase {
	return &MoveBookUseCase{bookRepo: bookRepo, shelfRepo: shelfRepo, tx: tx, publisher: publisher}
}

// MoveBookRequest 移动请求
type MoveBookRequest struct {
	BookID  uint
	ShelfID uint // 目标书架
}

// Execute 执行移动
func (uc *MoveBookUseCase) Execute(ctx context.Context, req MoveBookRequest) (resp *BookResponse, err error) {
	ctx, done := application.StartOperation(ctx, "move_book",
		attribute.Int("book_id", int(req.BookID)),
		attribute.Int("shelf_id", int(req.ShelfID)),
	)
	defer func() { done(err) }()

	var events event.Recorder
	var b *book.Book
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		locked, err := uc.bookRepo.LockByID(ctx, req.BookID)
		if err != nil {
			return err
		}
		b = locked
		if b.ShelfID == req.ShelfID {
			return nil
		}

		target, err := uc.shelfRepo.LockByID(ctx, req.ShelfID)
		if err != nil {
			return err
		}
		count, err := uc.bookRepo.CountByShelf(ctx, target.ID)
		if err != nil {
			return err
		}
		if err := target.CheckRoomFor(count); err != nil {
			return err
		}

		from := b.MoveTo(target.ID)
		if err := uc.bookRepo.Update(ctx, b); err != nil {
			return err
		}
		events.Record(event.ShelfCapacityChanged(from), event.ShelfCapacityChanged(target.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(ctx, uc.publisher)
	return toBookResponse(b), nil
}
