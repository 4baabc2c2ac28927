package user

import (
	"time"
)

// Role 用户角色
type Role string

const (
	RoleUser      Role = "ROLE_USER"
	RoleLibrarian Role = "ROLE_LIBRARIAN"
	RoleAdmin     Role = "ROLE_ADMIN"
)

// Valid 是否为已知角色
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleLibrarian, RoleAdmin:
		return true
	}
	return false
}

// Implied 角色隐含的全部权限:管理员也是馆员,馆员也是读者
func (r Role) Implied() []string {
	switch r {
	case RoleAdmin:
		return []string{string(RoleAdmin), string(RoleLibrarian), string(RoleUser)}
	case RoleLibrarian:
		return []string{string(RoleLibrarian), string(RoleUser)}
	default:
		return []string{string(RoleUser)}
	}
}

// User 用户实体(聚合根)
// 密码为bcrypt哈希;读者、馆员、管理员共用此实体,以Role区分
type User struct {
	ID        uint
	Email     string
	Password  string
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法),hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsStaff 馆员或管理员
func (u *User) IsStaff() bool {
	return u.Role == RoleLibrarian || u.Role == RoleAdmin
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}

// CheckDeletableBy 只有管理员可以删除馆员(及管理员)账号
func (u *User) CheckDeletableBy(actor Role) error {
	if u.IsStaff() && actor != RoleAdmin {
		return ErrForbiddenDeleteStaff
	}
	return nil
}
