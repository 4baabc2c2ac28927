package lending

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// 借阅领域错误定义
var (
	ErrTransactionNotFound = apperrors.New(apperrors.ErrCodeTransactionNotFound, "Lend transaction not found.")

	// ErrNotAvailable 没有可借副本
	ErrNotAvailable = apperrors.New(apperrors.ErrCodeNotAvailable, "Book is not available for lending.")

	// ErrAlreadyLent 用户已有未归还的借阅
	ErrAlreadyLent = apperrors.New(apperrors.ErrCodeAlreadyLent, "User has already lent a book.")

	// ErrHasReservation 剩余副本已被其他用户预约
	ErrHasReservation = apperrors.New(apperrors.ErrCodeHasReservation, "Book has a reservation.")

	ErrAlreadyReturned = apperrors.New(apperrors.ErrCodeAlreadyReturned, "Book has already been returned.")
	ErrMustPayLateFee  = apperrors.New(apperrors.ErrCodeMustPayLateFee, "Late fee must be paid before returning the book.")
	ErrNoLateFeeToPay  = apperrors.New(apperrors.ErrCodeNoLateFeeToPay, "There is no late fee to pay.")
)
