package dto

// CreateShelfRequest 新建书架
type CreateShelfRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"A-01"`
	Capacity int    `json:"capacity" binding:"required,min=1,max=100000" example:"50"`
}

// UpdateShelfRequest 修改书架，零值字段不修改
type UpdateShelfRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100" example:"A-02"`
	Capacity int    `json:"capacity" binding:"omitempty,min=1,max=100000" example:"80"`
}
