package book

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "Book not found.")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeAlreadyExists, "Book already exists with this isbn.")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "Invalid isbn.")

	// ErrInvalidCount 总量必须大于0
	ErrInvalidCount = apperrors.New(apperrors.ErrCodeInvalidParams, "Total count must be greater than 0.")

	// ErrTotalCountBelowLentCount 总量小于未归还数
	ErrTotalCountBelowLentCount = apperrors.New(apperrors.ErrCodeTotalCountBelowLentCount, "Total count cannot be less than the number of lent copies.")

	// ErrCannotDelete 仍有未归还的借出
	ErrCannotDelete = apperrors.New(apperrors.ErrCodeCannotDelete, "Book has unreturned copies and cannot be deleted.")
)
