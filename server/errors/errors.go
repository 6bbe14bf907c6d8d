package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError HTTP 상태와 컨텍스트를 가진 애플리케이션 오류입니다.
type AppError struct {
	Code    int    `json:"status_code"` // HTTP 상태 코드
	Message string `json:"message"`     // 사용자에게 보여줄 메시지
	Err     error  `json:"-"`           // 로그용 내부 오류, 직렬화하지 않음
	Context string `json:"-"`           // 추가 컨텍스트 (함수, 파라미터)
}

// Error error 인터페이스를 구현합니다.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap errors.Is와 errors.As에서 쓸 내부 오류를 반환합니다.
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode HTTP 상태 코드를 반환합니다.
func (e *AppError) StatusCode() int {
	return e.Code
}

// UserMessage 사용자에게 보여줄 메시지를 반환합니다.
func (e *AppError) UserMessage() string {
	return e.Message
}

// WithContext 오류에 컨텍스트를 덧붙입니다.
func (e *AppError) WithContext(context string) *AppError {
	e.Context = context
	return e
}

// NewValidationError 400 Bad Request 오류를 생성합니다.
func NewValidationError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Err:     err,
	}
}

// NewInternalError 500 Internal Server Error 오류를 생성합니다.
// 사용자에게는 일반 메시지만 보여주고 상세 내용은 로그로만 남깁니다.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: "일시적인 오류가 발생했어요. 잠시 후 다시 시도해 주세요.",
		Err:     errors.Join(errors.New(message), err),
	}
}

// NewUpstreamError 502 Bad Gateway 오류를 생성합니다. 시세표 출처 장애용입니다.
func NewUpstreamError(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Message: "시세표를 불러오지 못했어요. 잠시 후 다시 시도해 주세요.",
		Err:     errors.Join(errors.New(message), err),
	}
}

// AsAppError 오류 체인에서 AppError를 찾습니다. 없으면 내부 오류로 감쌉니다.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("unexpected error", err)
}
