package dto

import "github.com/shopspring/decimal"

// UpdateLateFeeRequest 修改每日滞纳金
type UpdateLateFeeRequest struct {
	LateFee decimal.Decimal `json:"late_fee" swaggertype:"string" example:"0.50"`
}

// UpdateLendDayRequest 修改借阅天数
type UpdateLendDayRequest struct {
	LendDay int `json:"lend_day" binding:"required,min=1,max=365" example:"14"`
}
