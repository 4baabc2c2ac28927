package lending

import (
	"github.com/shopspring/decimal"

	"github.com/xiebiao/library/internal/domain/calendar"
)

// LateFee 滞纳金计算(纯函数)
//
//	today <= deadline            → 0
//	否则 feePerDay × 逾期天数 − 已付,且不小于0
//
// 逾期天数按自然日计算(today.EpochDay − deadline.EpochDay)
func LateFee(deadline, today calendar.Date, feePerDay, alreadyPaid decimal.Decimal) decimal.Decimal {
	if !today.After(deadline) {
		return decimal.Zero
	}

	days := decimal.NewFromInt(today.DaysSince(deadline))
	fee := feePerDay.Mul(days).Sub(alreadyPaid)
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}
