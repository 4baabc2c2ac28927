package reservation

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrReservationNotFound = apperrors.New(apperrors.ErrCodeReservationNotFound, "Reservation not found.")

	// ErrAlreadyHasReservation 用户已有今天或之后的待处理预约
	ErrAlreadyHasReservation = apperrors.New(apperrors.ErrCodeAlreadyHasReservation, "User already has a reservation.")

	// ErrHasUncompletedReservation 冷却期内有未完成的预约
	ErrHasUncompletedReservation = apperrors.New(apperrors.ErrCodeHasUncompletedReservation, "User has an uncompleted reservation in the last 7 days.")

	ErrAlreadyCompleted    = apperrors.New(apperrors.ErrCodeAlreadyCompleted, "Reservation is already completed.")
	ErrNotAvailableForDate = apperrors.New(apperrors.ErrCodeNotAvailableForDate, "Book is not available for the selected date.")
	ErrDateInPast          = apperrors.New(apperrors.ErrCodeInvalidParams, "Reservation date cannot be in the past.")
)
