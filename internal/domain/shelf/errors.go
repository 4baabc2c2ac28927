package shelf

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrShelfNotFound      = apperrors.New(apperrors.ErrCodeShelfNotFound, "Shelf not found.")
	ErrShelfNameDuplicate = apperrors.New(apperrors.ErrCodeAlreadyExists, "Shelf already exists with this name.")
	ErrInvalidCapacity    = apperrors.New(apperrors.ErrCodeInvalidParams, "Capacity must be greater than 0.")

	// ErrShelfFull 书架已满
	ErrShelfFull = apperrors.New(apperrors.ErrCodeShelfFull, "Shelf is full.")

	// ErrShelfWillBeFull 缩容后放不下现有图书
	ErrShelfWillBeFull = apperrors.New(apperrors.ErrCodeShelfFull, "Shelf will be full with the new capacity.")

	// ErrCannotDelete 书架上还有书
	ErrCannotDelete = apperrors.New(apperrors.ErrCodeCannotDelete, "Shelf has books and cannot be deleted.")
)
