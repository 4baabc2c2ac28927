// Package handler HTTP处理器
// Handler只负责解析请求、调用应用层用例、返回统一响应，不包含业务逻辑
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/response"
)

// bindJSON 绑定并校验JSON请求体，失败时已写出40001响应
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return false
	}
	return true
}

// bindQuery 绑定并校验查询参数
func bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return false
	}
	return true
}

// uintParam 解析路径中的数字ID
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// isStaff 当前用户是否为馆员或管理员
func isStaff(c *gin.Context) bool {
	return middleware.HasRole(c, string(user.RoleLibrarian), string(user.RoleAdmin))
}

// actorRole 当前用户的最高角色
func actorRole(c *gin.Context) user.Role {
	switch {
	case middleware.HasRole(c, string(user.RoleAdmin)):
		return user.RoleAdmin
	case middleware.HasRole(c, string(user.RoleLibrarian)):
		return user.RoleLibrarian
	default:
		return user.RoleUser
	}
}
