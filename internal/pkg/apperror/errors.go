package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden             ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest            ErrorCode = "BAD_REQUEST"
	ErrCodeConflict              ErrorCode = "CONFLICT"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidState          ErrorCode = "INVALID_STATE"
	ErrCodeAlreadyAccepted       ErrorCode = "ALREADY_ACCEPTED"
	ErrCodeDisputeAlreadyOpen    ErrorCode = "DISPUTE_ALREADY_OPEN"
	ErrCodeAlreadyReviewed       ErrorCode = "ALREADY_REVIEWED"
	ErrCodeInvalidPrice          ErrorCode = "INVALID_PRICE"
	ErrCodeRevisionLimitExceeded ErrorCode = "REVISION_LIMIT_EXCEEDED"
	ErrCodeResolutionRequired    ErrorCode = "RESOLUTION_REQUIRED"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidPrice,
		ErrCodeRevisionLimitExceeded, ErrCodeResolutionRequired:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeInvalidState, ErrCodeAlreadyAccepted,
		ErrCodeDisputeAlreadyOpen, ErrCodeAlreadyReviewed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки, если err — *AppError.
func CodeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

func is(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool        { return is(err, ErrCodeNotFound) }
func IsForbidden(err error) bool       { return is(err, ErrCodeForbidden) }
func IsValidation(err error) bool      { return is(err, ErrCodeValidation) }
func IsInvalidState(err error) bool    { return is(err, ErrCodeInvalidState) }
func IsConflict(err error) bool        { return is(err, ErrCodeConflict) }
func IsAlreadyAccepted(err error) bool { return is(err, ErrCodeAlreadyAccepted) }
func IsAlreadyReviewed(err error) bool { return is(err, ErrCodeAlreadyReviewed) }

var (
	ErrOfferNotFound    = New(ErrCodeNotFound, "оффер не найден")
	ErrOrderNotFound    = New(ErrCodeNotFound, "заказ не найден")
	ErrContractNotFound = New(ErrCodeNotFound, "контракт не найден")
	ErrDisputeNotFound  = New(ErrCodeNotFound, "спор не найден")
	ErrReviewNotFound   = New(ErrCodeNotFound, "отзыв не найден")
	ErrServiceNotFound  = New(ErrCodeNotFound, "услуга не найдена")
	ErrUnauthorized     = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden        = New(ErrCodeForbidden, "недостаточно прав")
)
