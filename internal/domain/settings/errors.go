package settings

import (
	apperrors "github.com/xiebiao/library/pkg/errors"
)

var (
	ErrSettingNotFound  = apperrors.New(apperrors.ErrCodeNotFound, "Setting not found.")
	ErrInvalidLateFee   = apperrors.New(apperrors.ErrCodeInvalidParams, "Late fee per day cannot be negative.")
	ErrInvalidLendDay   = apperrors.New(apperrors.ErrCodeInvalidParams, "Lend day must be between 1 and 365.")
	ErrCorruptedSetting = apperrors.New(apperrors.ErrCodeInternal, "Stored setting value is invalid.")
)
