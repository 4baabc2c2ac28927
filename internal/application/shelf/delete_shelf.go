package shelf

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// DeleteShelfUseCase 删除书架,书架上还有书时不能删除
type DeleteShelfUseCase struct {
	shelfRepo shelf.Repository
	bookRepo  book.Repository
	tx        application.Transactor
}

// NewDeleteShelfUseCase 创建用例
func NewDeleteShelfUseCase(shelfRepo shelf.Repository, bookRepo book.Repository, tx application.Transactor) *DeleteShelfUseCase {
	return &DeleteShelfUseCase{shelfRepo: shelfRepo, bookRepo: bookRepo, tx: tx}
}

// Execute 执行删除
func (uc *DeleteShelfUseCase) Execute(ctx context.Context, shelfID uint) (err error) {
	ctx, done := application.StartOperation(ctx, "delete_shelf", attribute.Int("shelf_id", int(shelfID)))
	defer func() { done(err) }()

	return uc.tx.Transaction(ctx, func(ctx context.Context) error {
		// 锁住书架,与并发的新建/移动图书互斥
		s, err := uc.shelfRepo.LockByID(ctx, shelfID)
		if err != nil {
			return err
		}
		count, err := uc.bookRepo.CountByShelf(ctx, s.ID)
		if err != nil {
			return err
		}
		if err := shelf.CheckDeletable(count); err != nil {
			return err
		}
		return uc.shelfRepo.Delete(ctx, s.ID)
	})
}
