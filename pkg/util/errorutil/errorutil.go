package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the sync store and the staff API.
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeTimeout      = "TIMEOUT"
	CodeRemote       = "REMOTE_ERROR"
	CodeCorruptData  = "CORRUPT_DATA"
	CodeInternal     = "INTERNAL_ERROR"
)

// Sentinels for errors.Is. Matching is by code, so any DomainError carrying
// the same code matches regardless of message or wrapped cause.
var (
	ErrValidation   = &DomainError{Code: CodeValidation, Message: "validation failed"}
	ErrUnauthorized = &DomainError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrTimeout      = &DomainError{Code: CodeTimeout, Message: "timed out"}
	ErrRemote       = &DomainError{Code: CodeRemote, Message: "remote store failure"}
	ErrCorruptData  = &DomainError{Code: CodeCorruptData, Message: "corrupt data"}
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with a matching code. A timeout
// also matches ErrRemote since it is a kind of remote failure.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == CodeTimeout && t.Code == CodeRemote
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewRemoteError reports a failed exchange with the remote store. status is
// the HTTP status received, or 0 when no response arrived.
func NewRemoteError(message string, status int, err error) error {
	details := map[string]any{}
	if status > 0 {
		details["status"] = status
	}
	return &DomainError{
		Code:       CodeRemote,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

func NewTimeout(message string, err error) error {
	return &DomainError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
		Err:        err,
	}
}

func NewCorruptData(slot string, err error) error {
	return &DomainError{
		Code:       CodeCorruptData,
		Message:    fmt.Sprintf("slot %s holds unreadable data", slot),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"slot": slot},
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		if de, ok := NewTimeout("request timed out", err).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
