package lending

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/library/internal/domain/calendar"
	"github.com/xiebiao/library/internal/domain/lending"
)

// ListTransactionsUseCase 借阅记录列表(我的借阅、某读者的借阅、按是否归还筛选)
type ListTransactionsUseCase struct {
	lendRepo lending.Repository
}

// NewListTransactionsUseCase 创建列表用例
func NewListTransactionsUseCase(lendRepo lending.Repository) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{lendRepo: lendRepo}
}

// ListTransactionsRequest 列表请求
type ListTransactionsRequest struct {
	UserID   uint  // 0表示全部读者
	Returned *bool // nil表示不筛选
	Page     int
	PageSize int
}

// ListTransactionsResponse 列表响应
type ListTransactionsResponse struct {
	Items []*TransactionResponse
	Total int64
}

// Execute 执行查询
func (uc *ListTransactionsUseCase) Execute(ctx context.Context, req ListTransactionsRequest) (*ListTransactionsResponse, error) {
	txs, total, err := uc.lendRepo.List(ctx, lending.ListParams{
		UserID:   req.UserID,
		Returned: req.Returned,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		items[i] = toTransactionResponse(t)
	}
	return &ListTransactionsResponse{Items: items, Total: total}, nil
}

// =========================================
// 应用层DTO
// =========================================

// TransactionResponse 借阅记录
type TransactionResponse struct {
	ID           string          `json:"id"`
	BookID       uint            `json:"book_id"`
	UserID       uint            `json:"user_id"`
	LenderID     uint            `json:"lender_id"`
	LendDate     time.Time       `json:"lend_date"`
	DeadlineDate calendar.Date   `json:"deadline_date"`
	ReturnDate   *time.Time      `json:"return_date,omitempty"`
	LateFeePaid  decimal.Decimal `json:"late_fee_paid"`
	Returned     bool            `json:"returned"`
}

func toTransactionResponse(t *lending.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		BookID:       t.BookID,
		UserID:       t.UserID,
		LenderID:     t.LenderID,
		LendDate:     t.LendDate,
		DeadlineDate: t.DeadlineDate,
		ReturnDate:   t.ReturnDate,
		LateFeePaid:  t.LateFeePaid,
		Returned:     t.Returned,
	}
}
