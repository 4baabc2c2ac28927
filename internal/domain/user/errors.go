package user

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 用户领域错误定义
var (
	ErrUserNotFound         = apperrors.New(apperrors.ErrCodeUserNotFound, "User not found.")
	ErrEmailDuplicate       = apperrors.New(apperrors.ErrCodeAlreadyExists, "User already exists with this email.")
	ErrInvalidEmail         = apperrors.New(apperrors.ErrCodeInvalidParams, "Invalid email.")
	ErrInvalidNickname      = apperrors.New(apperrors.ErrCodeInvalidParams, "Nickname must be 2-50 characters.")
	ErrInvalidRole          = apperrors.New(apperrors.ErrCodeInvalidParams, "Invalid role.")
	ErrForbiddenDeleteStaff = apperrors.New(apperrors.ErrCodeForbidden, "Only an admin can delete a librarian.")
)
