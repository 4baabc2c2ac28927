package lending

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// Transaction 借阅记录(聚合根)
// 设计说明:
// 1. ID是UUID字符串,由应用层生成
// 2. DeadlineDate在借出时确定 = 借出日 + 借期天数,之后不再变化
// 3. Returned是终态,归还后ReturnDate只设置一次
// 4. LateFeePaid是累计已付滞纳金,只增不减
// 5. 借阅记录永不删除
type Transaction struct {
	ID           string
	BookID       uint
	UserID       uint // 借阅人
	LenderID     uint // 办理借出的馆员
	LendDate     time.Time
	DeadlineDate calendar.Date
	ReturnDate   *time.Time
	LateFeePaid  decimal.Decimal
	Returned     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTransaction 创建借阅记录(工厂方法)
func NewTransaction(id string, bookID, userID, lenderID uint, now time.Time, lendDays int) *Transaction {
	return &Transaction{
		ID:           id,
		BookID:       bookID,
		UserID:       userID,
		LenderID:     lenderID,
		LendDate:     now,
		DeadlineDate: calendar.Of(now).AddDays(lendDays),
		LateFeePaid:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// LateFee 当前应付未付的滞纳金
// 归还前必须缴清,归还后恒为0,费率调整不会再追溯已归还的借阅
func (t *Transaction) LateFee(today calendar.Date, feePerDay decimal.Decimal) decimal.Decimal {
	if t.Returned {
		return decimal.Zero
	}
	return LateFee(t.DeadlineDate, today, feePerDay, t.LateFeePaid)
}

// Return 归还
// 业务规则:
// - 已归还不能重复归还
// - 有未付滞纳金时必须先缴费
func (t *Transaction) Return(now time.Time, outstanding decimal.Decimal) error {
	if t.Returned {
		return ErrAlreadyReturned
	}
	if outstanding.IsPositive() {
		return ErrMustPayLateFee
	}
	t.Returned = true
	t.ReturnDate = &now
	t.UpdatedAt = now
	return nil
}

// PayLateFee 缴清当前滞纳金,返回本次缴纳金额
func (t *Transaction) PayLateFee(now time.Time, outstanding decimal.Decimal) (decimal.Decimal, error) {
	if t.Returned || !outstanding.IsPositive() {
		return decimal.Zero, ErrNoLateFeeToPay
	}
	t.LateFeePaid = t.LateFeePaid.Add(outstanding)
	t.UpdatedAt = now
	return outstanding, nil
}
