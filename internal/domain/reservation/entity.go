package reservation

import (
	"time"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// CoolDownDays 未完成的预约创建后多少天内不能再预约
const CoolDownDays = 7

// Reservation 图书预约
// 设计说明:
// 1. 一个预约表示:用户希望在ReservationDate当天借到这本书
// 2. Completed=true表示用户已借到该书,此后预约不可修改、不可取消
// 3. 取消即删除(仅限未完成的预约)
type Reservation struct {
	ID              uint
	BookID          uint
	UserID          uint
	ReservationDate calendar.Date
	Completed       bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewReservation 创建预约
func NewReservation(bookID, userID uint, date calendar.Date, now time.Time) *Reservation {
	return &Reservation{
		BookID:          bookID,
		UserID:          userID,
		ReservationDate: date,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Reschedule 修改预约日期
func (r *Reservation) Reschedule(date calendar.Date, now time.Time) error {
	if r.Completed {
		return ErrAlreadyCompleted
	}
	r.ReservationDate = date
	r.UpdatedAt = now
	return nil
}

// CheckCancelable 已完成的预约不能取消
func (r *Reservation) CheckCancelable() error {
	if r.Completed {
		return ErrAlreadyCompleted
	}
	return nil
}

// IsOwnedBy 是否为该用户的预约
func (r *Reservation) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}

// CheckDate 预约日期不能早于今天
func CheckDate(date, today calendar.Date) error {
	if date.Before(today) {
		return ErrDateInPast
	}
	return nil
}

// CoolDownSince 冷却期起点:now往前CoolDownDays天
func CoolDownSince(now time.Time) time.Time {
	return now.AddDate(0, 0, -CoolDownDays)
}
