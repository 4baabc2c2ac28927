package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_HTTPStatus(t *testing.T) {
	cases := []struct {
		name   string
		code   int
		status int
		cat    Category
	}{
		{"参数错误", ErrCodeBindError, http.StatusBadRequest, CategoryInvalidParams},
		{"未登录", ErrCodeTokenExpired, http.StatusUnauthorized, CategoryUnauthorized},
		{"无权限", ErrCodeForbidden, http.StatusForbidden, CategoryForbidden},
		{"不存在", ErrCodeShelfNotFound, http.StatusNotFound, CategoryNotFound},
		{"冲突", ErrCodeAlreadyLent, http.StatusConflict, CategoryConflict},
		{"非法操作", ErrCodeShelfFull, http.StatusUnprocessableEntity, CategoryInvalidOperation},
		{"内部错误", ErrCodeRedisError, http.StatusInternalServerError, CategoryInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New(tc.code, "x")
			assert.Equal(t, tc.status, e.HTTPStatus())
			assert.Equal(t, tc.cat, e.Category())
		})
	}
}

func TestAppError_Is(t *testing.T) {
	wrapped := fmt.Errorf("lend: %w", ErrForbidden)
	assert.True(t, errors.Is(wrapped, ErrForbidden))
	assert.False(t, errors.Is(wrapped, ErrUnauthorized))
}

func TestGetAppError_WrapsPlainError(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.Equal(t, CategoryInternal, CategoryOf(errors.New("boom")))
	assert.Equal(t, CategoryForbidden, CategoryOf(ErrForbidden))
}
