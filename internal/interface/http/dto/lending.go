package dto

// LendBookRequest 借书请求（馆员操作）
type LendBookRequest struct {
	BookID uint `json:"book_id" binding:"required" example:"1"`
	UserID uint `json:"user_id" binding:"required" example:"2"`
}

// ListTransactionsRequest 借阅记录查询
type ListTransactionsRequest struct {
	PageQuery
	Returned *bool `form:"returned" example:"false"`
}
