package mysql

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// dateValue DATE列
// 以"yyyy-MM-dd"字符串写入，避免驱动按连接时区换算导致日期偏移
type dateValue calendar.Date

func toDateValue(d calendar.Date) dateValue {
	return dateValue(d)
}

func (v dateValue) Date() calendar.Date {
	return calendar.Date(v)
}

// Value 实现driver.Valuer
func (v dateValue) Value() (driver.Value, error) {
	return calendar.Date(v).String(), nil
}

// Scan 实现sql.Scanner
func (v *dateValue) Scan(src any) error {
	switch x := src.(type) {
	case time.Time:
		*v = dateValue(calendar.Of(x))
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	default:
		return fmt.Errorf("无法将%T转换为日期", src)
	}
}

func (v *dateValue) parse(s string) error {
	// DATE列也可能以"yyyy-MM-dd hh:mm:ss"形式返回
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return err
	}
	*v = dateValue(d)
	return nil
}
