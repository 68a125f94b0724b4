package errorx

import (
	"errors"
	"fmt"
	"net/http"
)

// CodeError 带业务错误码的自定义错误
// 实现了 error 接口，支持 %w 包装底层错误，且能被 errors.Is/errors.As 识别
// Ident 是对外稳定的字符串标识（如 ERR_RATE_LIMIT_EXCEEDED），HTTP 层据此向前端透传，
// Ident 一旦发布不可变更
type CodeError struct {
	Code  int    // 业务错误码
	Ident string // 稳定字符串标识，可为空
	Msg   string // 错误消息
	cause error  // 被包装的底层错误
}

// Error 实现 Go 标准 error 接口
// 当存在底层错误时，返回格式为 "消息: 底层错误"；否则仅返回消息
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap 实现 errors.Unwrap 接口，支持 errors.Is/errors.As 向下追溯
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New 创建一个新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf 创建一个带格式化消息的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// NewIdent 创建带稳定字符串标识的 CodeError
// 用法: errorx.NewIdent(errorx.CodeNotFound, errorx.IdentTargetNotFound, "目标不存在")
func NewIdent(code int, ident, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Ident: ident,
		Msg:   msg,
	}
}

// Wrap 包装底层错误，添加业务错误码和消息
// 用法: errorx.Wrap(err, errorx.CodeNotFound, "点评不存在")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf 包装底层错误，支持格式化消息
// 用法: errorx.Wrapf(err, errorx.CodeNotFound, "点评 %s 不存在", reviewId)
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode 从错误中提取业务错误码，如果不是 CodeError 则返回默认码
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy // 默认返回服务繁忙
}

// GetIdent 从错误中提取稳定字符串标识，非 CodeError 或未设置时返回空串
func GetIdent(err error) string {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Ident
	}
	return ""
}

// HTTPStatus 将业务错误码映射为 HTTP 状态码
// 限流 -> 429，未找到 -> 404，参数/校验 -> 400，未授权 -> 401，其余 -> 500
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeUserExist, CodeInvalidPassword:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound, CodeUserNotExist:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// 业务状态码常量定义
const (
	CodeSuccess         = 1000 // 成功
	CodeInvalidParam    = 1001 // 请求参数错误
	CodeUserExist       = 1002 // 用户已存在
	CodeUserNotExist    = 1003 // 用户不存在
	CodeInvalidPassword = 1004 // 密码错误
	CodeServerBusy      = 1005 // 服务繁忙
	CodeUnauthorized    = 1006 // 未授权/认证失败
	CodeNotFound        = 1008 // 资源不存在
	CodeRateLimited     = 1009 // 触发限流
	CodeDBError         = 1010 // 数据库错误
	CodeCacheError      = 1011 // 缓存错误
)

// 对外稳定的错误标识
// 与 HTTPStatus 的映射配套：限流 429，未找到 404，校验 400
const (
	IdentRateLimitExceeded  = "ERR_RATE_LIMIT_EXCEEDED"
	IdentFingerprintInvalid = "ERR_DEVICE_FINGERPRINT_INVALID"
	IdentReviewValidation   = "ERR_REVIEW_VALIDATION"
	IdentCommentValidation  = "ERR_COMMENT_VALIDATION"
	IdentReportValidation   = "ERR_REPORT_VALIDATION"
	IdentTargetNotFound     = "ERR_TARGET_NOT_FOUND"
	IdentReviewNotFound     = "ERR_REVIEW_NOT_FOUND"
	IdentLikeTargetNotFound = "ERR_LIKE_TARGET_NOT_FOUND"
	IdentReportTargetLost   = "ERR_REPORT_TARGET_NOT_FOUND"
	IdentReportNotFound     = "ERR_REPORT_NOT_FOUND"
)

// 预定义常用错误实例
// 这些实例既可直接返回，也可用于 errors.Is 比较
var (
	ErrInvalidParam = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy   = New(CodeServerBusy, "服务繁忙")
	ErrRateLimited  = NewIdent(CodeRateLimited, IdentRateLimitExceeded, "今日操作次数已达上限，请明天再试")
)

// IsNotFound 检查错误是否为"未找到"类型
func IsNotFound(err error) bool {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code == CodeNotFound || codeErr.Code == CodeUserNotExist
	}
	return err != nil && err.Error() == "record not found"
}
