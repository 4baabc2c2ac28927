package dto

// RegisterRequest 读者注册请求
// 说明：HTTP层的DTO，包含参数验证tag；自助注册只能得到ROLE_USER
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"Passw0rd!"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"读者甲"`
}

// CreateUserRequest 管理员创建账号（可指定角色）
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email" example:"librarian@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"Passw0rd!"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"馆员乙"`
	Role     string `json:"role" binding:"required,oneof=ROLE_USER ROLE_LIBRARIAN ROLE_ADMIN" example:"ROLE_LIBRARIAN"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"Passw0rd!"`
}

// ProfileResponse 当前登录用户
type ProfileResponse struct {
	UserID uint     `json:"user_id" example:"1"`
	Email  string   `json:"email" example:"reader@example.com"`
	Roles  []string `json:"roles"`
}
