package shelf

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// UpdateShelfUseCase 修改书架名称与容量
// 业务规则:新容量不能小于书架上现有的图书数;容量变化后重新计算剩余容量
type UpdateShelfUseCase struct {
	shelfRepo shelf.Repository
	bookRepo  book.Repository
	tx        application.Transactor
	publisher event.Publisher
}

// NewUpdateShelfUseCase 创建用例
func NewUpdateShelfUseCase(
	shelfRepo shelf.Repository,
	bookRepo book.Repository,
	tx application.Transactor,
	publisher event.Publisher,
) *UpdateShelfUseCase {
	return &UpdateShelfUseCase{shelfRepo: shelfRepo, bookRepo: bookRepo, tx: tx, publisher: publisher}
}

// UpdateShelfRequest 修改请求,零值字段不修改
type UpdateShelfRequest struct {
	ShelfID  uint
	Name     string
	Capacity int
}

// Execute 执行修改
func (uc *UpdateShelfUseCase) Execute(ctx context.Context, req UpdateShelfRequest) (resp *ShelfResponse, err error) {
	ctx, done := application.StartOperation(ctx, "update_shelf", attribute.Int("shelf_id", int(req.ShelfID)))
	defer func() { done(err) }()

	var events event.Recorder
	var s *shelf.Shelf
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		locked, err := uc.shelfRepo.LockByID(ctx, req.ShelfID)
		if err != nil {
			return err
		}
		s = locked

		if req.Name != "" && req.Name != s.Name {
			exists, err := uc.shelfRepo.ExistsByName(ctx, req.Name, s.ID)
			if err != nil {
				return err
			}
			if exists {
				return shelf.ErrShelfNameDuplicate
			}
			s.Rename(req.Name)
		}

		if req.Capacity != 0 {
			count, err := uc.bookRepo.CountByShelf(ctx, s.ID)
			if err != nil {
				return err
			}
			changed, err := s.ChangeCapacity(req.Capacity, count)
			if err != nil {
				return err
			}
			if changed {
				events.Record(event.ShelfCapacityChanged(s.ID))
			}
		}
		return uc.shelfRepo.Update(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	events.Flush(ctx, uc.publisher)
	return toShelfResponse(s), nil
}
