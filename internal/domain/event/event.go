// Package event 流通相关的领域事件
//
// 账本操作在事务提交后发布事件，异步修正任务据此重新计算派生字段：
//   - BookAvailabilityChanged   → 图书availableCount
//   - ShelfCapacityChanged      → 书架availableCapacity
//   - ReservationShouldComplete → 借阅人对该书的待处理预约置为完成
package event

import (
	"context"
	"fmt"
	"time"
)

// Kind 事件类型（同时用作RabbitMQ routing key）
type Kind string

const (
	KindBookAvailabilityChanged   Kind = "book.availability.changed"
	KindShelfCapacityChanged      Kind = "shelf.capacity.changed"
	KindReservationShouldComplete Kind = "reservation.should.complete"
)

// Kinds 所有事件类型
func Kinds() []Kind {
	return []Kind{KindBookAvailabilityChanged, KindShelfCapacityChanged, KindReservationShouldComplete}
}

// Valid 是否为已知类型
func (k Kind) Valid() bool {
	switch k {
	case KindBookAvailabilityChanged, KindShelfCapacityChanged, KindReservationShouldComplete:
		return true
	}
	return false
}

// Event 领域事件
type Event struct {
	Kind       Kind      `json:"kind"`
	BookID     uint      `json:"book_id,omitempty"`
	ShelfID    uint      `json:"shelf_id,omitempty"`
	UserID     uint      `json:"user_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookAvailabilityChanged 图书的借出/归还/总量发生变化
func BookAvailabilityChanged(bookID uint) Event {
	return Event{Kind: KindBookAvailabilityChanged, BookID: bookID, OccurredAt: time.Now()}
}

// ShelfCapacityChanged 书架上的图书数量或容量发生变化
func ShelfCapacityChanged(shelfID uint) Event {
	return Event{Kind: KindShelfCapacityChanged, ShelfID: shelfID, OccurredAt: time.Now()}
}

// ReservationShouldComplete 用户借到了书，其对该书的预约应当完成
func ReservationShouldComplete(bookID, userID uint) Event {
	return Event{Kind: KindReservationShouldComplete, BookID: bookID, UserID: userID, OccurredAt: time.Now()}
}

// Key 分片键：同一实体的事件必须按发布顺序串行处理
// 预约完成事件与图书可借数量事件共用图书的键
func (e Event) Key() string {
	if e.Kind == KindShelfCapacityChanged {
		return fmt.Sprintf("shelf:%d", e.ShelfID)
	}
	return fmt.Sprintf("book:%d", e.BookID)
}

func (e Event) String() string {
	switch e.Kind {
	case KindShelfCapacityChanged:
		return fmt.Sprintf("%s{shelf=%d}", e.Kind, e.ShelfID)
	case KindReservationShouldComplete:
		return fmt.Sprintf("%s{book=%d,user=%d}", e.Kind, e.BookID, e.UserID)
	default:
		return fmt.Sprintf("%s{book=%d}", e.Kind, e.BookID)
	}
}

// Publisher 事件发布（事务提交后调用）
// 发布失败由实现方记录日志与指标，不影响已提交的业务操作
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Recorder 收集事件，事务提交后再统一发布
type Recorder struct {
	events []Event
}

// Record 暂存事件
func (r *Recorder) Record(events ...Event) {
	r.events = append(r.events, events...)
}

// Flush 发布并清空
func (r *Recorder) Flush(ctx context.Context, p Publisher) {
	if len(r.events) == 0 {
		return
	}
	events := r.events
	r.events = nil
	p.Publish(ctx, events...)
}
