package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，Code的区间决定错误类别与HTTP状态码
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按Code比较，预定义错误被Wrap之后仍可用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Category 错误类别（由Code区间决定）
type Category int

const (
	CategoryInternal Category = iota
	CategoryInvalidParams
	CategoryUnauthorized
	CategoryForbidden
	CategoryNotFound
	CategoryConflict
	CategoryInvalidOperation
)

func (c Category) String() string {
	switch c {
	case CategoryInvalidParams:
		return "INVALID_PARAMS"
	case CategoryUnauthorized:
		return "UNAUTHORIZED"
	case CategoryForbidden:
		return "FORBIDDEN"
	case CategoryNotFound:
		return "NOT_FOUND"
	case CategoryConflict:
		return "CONFLICT"
	case CategoryInvalidOperation:
		return "INVALID_OPERATION"
	default:
		return "INTERNAL"
	}
}

// Category 返回错误类别
func (e *AppError) Category() Category {
	switch e.Code / 100 {
	case 400:
		return CategoryInvalidParams
	case 401:
		return CategoryUnauthorized
	case 403:
		return CategoryForbidden
	case 404:
		return CategoryNotFound
	case 409:
		return CategoryConflict
	case 422:
		return CategoryInvalidOperation
	default:
		return CategoryInternal
	}
}

// HTTPStatus 错误类别对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Category() {
	case CategoryInvalidParams:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryConflict:
		return http.StatusConflict
	case CategoryInvalidOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// WrapCode 以指定错误码包装基础设施错误（数据库、Redis、消息队列）
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：Code/100 即HTTP状态码
// - 400xx: 参数错误
// - 401xx: 未认证
// - 403xx: 无权限
// - 404xx: 资源不存在
// - 409xx: 与当前状态冲突（重复、已借出、已预约…）
// - 422xx: 业务规则不允许的操作（无可借副本、书架已满…）
// - 5xxxx: 服务端错误

const (
	// 系统级错误码
	ErrCodeInternal      = 50000
	ErrCodeDatabaseError = 50001
	ErrCodeRedisError    = 50002
	ErrCodeQueueError    = 50003

	// 参数错误
	ErrCodeInvalidParams = 40000
	ErrCodeBindError     = 40001
	ErrCodeWeakPassword  = 40002

	// 认证
	ErrCodeUnauthorized    = 40100
	ErrCodeInvalidToken    = 40101
	ErrCodeTokenExpired    = 40102
	ErrCodeInvalidPassword = 40103

	// 授权
	ErrCodeForbidden = 40300

	// 资源不存在
	ErrCodeNotFound            = 40400
	ErrCodeUserNotFound        = 40401
	ErrCodeBookNotFound        = 40402
	ErrCodeShelfNotFound       = 40403
	ErrCodeReservationNotFound = 40404
	ErrCodeTransactionNotFound = 40405

	// 冲突
	ErrCodeConflict                  = 40900
	ErrCodeAlreadyExists             = 40901
	ErrCodeAlreadyLent               = 40902
	ErrCodeAlreadyHasReservation     = 40903
	ErrCodeHasUncompletedReservation = 40904
	ErrCodeAlreadyCompleted          = 40905
	ErrCodeAlreadyReturned           = 40906
	ErrCodeHasReservation            = 40907

	// 非法操作
	ErrCodeInvalidOperation         = 42200
	ErrCodeShelfFull                = 42201
	ErrCodeNotAvailableForDate      = 42202
	ErrCodeNotAvailable             = 42203
	ErrCodeMustPayLateFee           = 42204
	ErrCodeNoLateFeeToPay           = 42205
	ErrCodeCannotDelete             = 42206
	ErrCodeTotalCountBelowLentCount = 42207
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	ErrWeakPassword  = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// CategoryOf 返回任意错误的类别，非AppError视为内部错误
func CategoryOf(err error) Category {
	return GetAppError(err).Category()
}
