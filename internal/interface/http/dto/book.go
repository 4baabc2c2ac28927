package dto

// CreateBookRequest 新书入库请求
type CreateBookRequest struct {
	ISBN        string `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title       string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author      string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" binding:"max=100" example:"人民邮电出版社"`
	Description string `json:"description" binding:"max=5000" example:"Go语言入门与实践"`
	TotalCount  int    `json:"total_count" binding:"required,min=1,max=10000" example:"3"`
	ShelfID     uint   `json:"shelf_id" binding:"required" example:"1"`
}

// UpdateBookRequest 修改图书信息，零值字段不修改
type UpdateBookRequest struct {
	ISBN        string `json:"isbn" binding:"omitempty,max=20" example:"9787115428028"`
	Title       string `json:"title" binding:"omitempty,max=200" example:"Go语言实战（第2版）"`
	Author      string `json:"author" binding:"omitempty,max=100"`
	Publisher   string `json:"publisher" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	TotalCount  int    `json:"total_count" binding:"omitempty,min=1,max=10000" example:"5"`
}

// MoveBookRequest 移动图书到另一书架
type MoveBookRequest struct {
	ShelfID uint `json:"shelf_id" binding:"required" example:"2"`
}

// ListBooksRequest 图书列表查询
type ListBooksRequest struct {
	PageQuery
	Keyword string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
	ShelfID uint   `form:"shelf_id" example:"1"`
}
