package settings

import (
	"time"
)

// Key 设置项键
type Key string

const (
	KeyLateFeePerDay Key = "late_fee_per_day"
	KeyLendDay       Key = "lend_day"
)

// 默认值(未设置时使用)
const (
	DefaultLateFeePerDay = "0.00"
	DefaultLendDay       = 14
)

// Setting 键值对设置项
type Setting struct {
	Key       Key
	Value     string
	UpdatedAt time.Time
}
