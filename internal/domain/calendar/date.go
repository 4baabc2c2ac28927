// Package calendar 以“天”为粒度的日期
// 截止日期、预约日期、滞纳天数都只关心日期，不关心时分秒与时区
package calendar

import (
	"fmt"
	"time"
)

const layout = "2006-01-02"

// Date 日期（内部统一为UTC零点）
type Date struct {
	t time.Time
}

// New 构造日期
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of 取t在其自身时区下的日期部分
func Of(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

// Parse 解析yyyy-MM-dd
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("日期格式应为yyyy-MM-dd: %w", err)
	}
	return Of(t), nil
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }
func (d Date) IsZero() bool       { return d.t.IsZero() }

// AddDays 加n天（n可为负）
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// EpochDay 距1970-01-01的天数
func (d Date) EpochDay() int64 {
	return d.t.Unix() / 86400
}

// DaysSince d - o 的天数
func (d Date) DaysSince(o Date) int64 {
	return d.EpochDay() - o.EpochDay()
}

// Time 返回UTC零点（用于持久化到DATE列）
func (d Date) Time() time.Time {
	return d.t
}

// StartIn 该日在loc时区的零点
func (d Date) StartIn(loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), 0, 0, 0, 0, loc)
}

func (d Date) String() string {
	return d.t.Format(layout)
}

// MarshalText 实现encoding.TextMarshaler（JSON序列化为"yyyy-MM-dd"）
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText 实现encoding.TextUnmarshaler
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
