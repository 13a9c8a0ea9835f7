package errs

import (
	"errors"
	"fmt"
	"strconv"
)

// ===== 错误码 =====
//
// 1xxx: 连接准入; 2xxx: 请求校验; 3xxx: 权限; 4xxx: 存储
const (
	CodeCredentialRequired = 1001
	CodeInvalidCredential  = 1002
	CodeUnknownUser        = 1003

	CodeEmptyContent    = 2001
	CodeMissingReceiver = 2002
	CodeBadPayload      = 2003

	CodeUnauthorized = 3001

	CodeStoreFailure = 4001
)

var (
	ErrCredentialRequired = NewCodeError(CodeCredentialRequired, "credential required")
	ErrInvalidCredential  = NewCodeError(CodeInvalidCredential, "invalid credential")
	ErrUnknownUser        = NewCodeError(CodeUnknownUser, "unknown user")

	ErrEmptyContent    = NewCodeError(CodeEmptyContent, "message content is empty")
	ErrMissingReceiver = NewCodeError(CodeMissingReceiver, "receiver id is missing")

	ErrUnauthorized = NewCodeError(CodeUnauthorized, "Unauthorized")
)

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func (e *CodeError) Error() string {
	if e.Detail == "" {
		return strconv.Itoa(e.Code) + " " + e.Msg
	}
	return strconv.Itoa(e.Code) + " " + e.Msg + ": " + e.Detail
}

// WithDetail 返回携带明细的副本，不修改原错误。
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) WithDetailf(format string, args ...any) *CodeError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// CodeOf 提取错误码；非 CodeError 统一按存储失败处理。
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return CodeStoreFailure
}

func New(msg string) error { return errors.New(msg) }
