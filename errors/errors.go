package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func E(op string, err error, message string, code int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusBadRequest)
}

func MethodNotAllowed(op string) *AppError {
	return E(op, nil, "POST only", http.StatusMethodNotAllowed)
}

func NotFound(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusNotFound)
}

func TooManyRequests(op string) *AppError {
	return E(op, nil, "Rate limit exceeded", http.StatusTooManyRequests)
}

func Internal(op string, err error, message string) *AppError {
	return E(op, err, message, http.StatusInternalServerError)
}

// Upstream carries a non-2xx completion response back to the caller with
// the same status code and the raw body as details.
func Upstream(op string, status int, body []byte) *AppError {
	return &AppError{
		Code:    status,
		Message: fmt.Sprintf("upstream returned status %d", status),
		Details: string(body),
		Op:      op,
	}
}

// StatusCode maps any error to the HTTP status it should be reported with.
func StatusCode(err error) int {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
