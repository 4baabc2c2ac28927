// Package reconcile 派生字段的异步修正
//
// 账本操作只写借阅/预约记录,图书的availableCount与书架的availableCapacity
// 由这里在事务提交后按事件重新计算。每个处理函数独立开启事务,
// 在行锁内重新统计,结果只取决于当前数据库状态,重复执行不会改变结果。
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/xiebiao/library/internal/application"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/event"
	"github.com/xiebiao/library/internal/domain/lending"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/shelf"
)

// Outcome 一次修正的结果
type Outcome string

const (
	OutcomeUpdated   Outcome = "updated"   // 写入了新值
	OutcomeUnchanged Outcome = "unchanged" // 已是正确值
	OutcomeSkipped   Outcome = "skipped"   // 实体已删除
)

// Reconciler 修正任务处理器
type Reconciler struct {
	bookRepo        book.Repository
	shelfRepo       shelf.Repository
	lendRepo        lending.Repository
	reservationRepo reservation.Repository
	tx              application.Transactor
}

// NewReconciler 创建修正任务处理器
func NewReconciler(
	bookRepo book.Repository,
	shelfRepo shelf.Repository,
	lendRepo lending.Repository,
	reservationRepo reservation.Repository,
	tx application.Transactor,
) *Reconciler {
	return &Reconciler{
		bookRepo:        bookRepo,
		shelfRepo:       shelfRepo,
		lendRepo:        lendRepo,
		reservationRepo: reservationRepo,
		tx:              tx,
	}
}

// Handle 按事件类型分派
func (r *Reconciler) Handle(ctx context.Context, e event.Event) (Outcome, error) {
	switch e.Kind {
	case event.KindBookAvailabilityChanged:
		return r.bookAvailability(ctx, e.BookID)
	case event.KindShelfCapacityChanged:
		return r.shelfCapacity(ctx, e.ShelfID)
	case event.KindReservationShouldComplete:
		return r.completeReservations(ctx, e.BookID, e.UserID)
	default:
		return "", fmt.Errorf("未知的事件类型: %s", e.Kind)
	}
}

// bookAvailability availableCount = totalCount - 未归还借出数
func (r *Reconciler) bookAvailability(ctx context.Context, bookID uint) (Outcome, error) {
	outcome := OutcomeUnchanged
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		b, err := r.bookRepo.LockByID(ctx, bookID)
		if err != nil {
			return err
		}
		unreturned, err := r.lendRepo.CountUnreturnedByBook(ctx, b.ID)
		if err != nil {
			return err
		}
		if !b.Reconcile(unreturned) {
			return nil
		}
		outcome = OutcomeUpdated
		return r.bookRepo.SetAvailableCount(ctx, b.ID, b.AvailableCount)
	})
	if errors.Is(err, book.ErrBookNotFound) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// shelfCapacity availableCapacity = capacity - 书架上的图书数
func (r *Reconciler) shelfCapacity(ctx context.Context, shelfID uint) (Outcome, error) {
	outcome := OutcomeUnchanged
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		s, err := r.shelfRepo.LockByID(ctx, shelfID)
		if err != nil {
			return err
		}
		count, err := r.bookRepo.CountByShelf(ctx, s.ID)
		if err != nil {
			return err
		}
		if !s.Reconcile(count) {
			return nil
		}
		outcome = OutcomeUpdated
		return r.shelfRepo.SetAvailableCapacity(ctx, s.ID, s.AvailableCapacity)
	})
	if errors.Is(err, shelf.ErrShelfNotFound) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// completeReservations 借阅人借到书后,其对该书的待处理预约全部完成
func (r *Reconciler) completeReservations(ctx context.Context, bookID, userID uint) (Outcome, error) {
	var n int64
	err := r.tx.Transaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = r.reservationRepo.CompletePending(ctx, bookID, userID)
		return err
	})
	if err != nil {
		return "", err
	}
	if n == 0 {
		return OutcomeUnchanged, nil
	}
	return OutcomeUpdated, nil
}

// metricKind 指标的kind标签
func metricKind(k event.Kind) string {
	switch k {
	case event.KindBookAvailabilityChanged:
		return "book_availability"
	case event.KindShelfCapacityChanged:
		return "shelf_capacity"
	case event.KindReservationShouldComplete:
		return "reservation_complete"
	default:
		return "unknown"
	}
}
