package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

const (
	keyUserID   = "user_id"
	keyEmail    = "email"
	keyNickname = "nickname"
	keyRoles    = "roles"
	keyToken    = "access_token"
)

// TokenBlacklist 已登出Token查询
// 实现：persistence/redis.SessionStore、persistence/memory.SessionStore
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Token
// 2. 检查黑名单
// 3. 验证Token并把用户信息、角色注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
//
//	authorized := v1.Group("")
//	authorized.Use(auth.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		// 已登出的Token不可再用
		blacklisted, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			response.Error(c, apperrors.Wrap(err, "验证Token失败"))
			c.Abort()
			return
		}
		if blacklisted {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(keyUserID, claims.UserID)
		c.Set(keyEmail, claims.Email)
		c.Set(keyNickname, claims.Nickname)
		c.Set(keyRoles, claims.Roles)
		c.Set(keyToken, token)

		c.Next()
	}
}

// RequireRole 要求拥有任一角色，必须挂在RequireAuth之后
//
//	books.POST("", auth.RequireAuth(), middleware.RequireRole("ROLE_LIBRARIAN"), h.Create)
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasRole(c, roles...) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 当前登录用户ID，未登录为0
func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get(keyUserID); ok {
		if uid, ok := v.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetEmail 当前登录用户邮箱
func GetEmail(c *gin.Context) string {
	return c.GetString(keyEmail)
}

// GetRoles 当前登录用户角色（含继承的角色）
func GetRoles(c *gin.Context) []string {
	return c.GetStringSlice(keyRoles)
}

// GetAccessToken 当前请求的Access Token，登出时写入黑名单
func GetAccessToken(c *gin.Context) string {
	return c.GetString(keyToken)
}

// HasRole 当前用户是否拥有任一角色
func HasRole(c *gin.Context, roles ...string) bool {
	for _, have := range GetRoles(c) {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CurrentUser 当前用户ID与角色
func CurrentUser(c *gin.Context) (uint, []string) {
	return GetUserID(c), GetRoles(c)
}
