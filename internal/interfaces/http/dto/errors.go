package dto

import (
	"errors"
	"net/http"

	"github.com/QodexGroup/gym-management-system-sub002/internal/domain/shared"
)

// Transport-level error codes. Domain failures keep their own codes
// (OVER_PAYMENT, BILL_LOCKED, ...) and are mapped by kind.
const (
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	ErrCodeInvalidID   = "ERR_INVALID_ID"
	ErrCodeForbidden   = "ERR_FORBIDDEN"
	ErrCodeNotFound    = "ERR_NOT_FOUND"
	ErrCodeTooLarge    = "ERR_REQUEST_TOO_LARGE"
	ErrCodeUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// InternalErrorMessage is shown for failures whose details must not leak
const InternalErrorMessage = "An unexpected error occurred"

// kindHTTPStatus maps domain error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:    http.StatusBadRequest,
	shared.KindStateConflict: http.StatusUnprocessableEntity,
	shared.KindNotFound:      http.StatusNotFound,
	shared.KindAtomicity:     http.StatusInternalServerError,
}

// codeHTTPStatus overrides the kind mapping for individual domain codes
var codeHTTPStatus = map[string]int{
	shared.ErrConcurrentUpdate.Code: http.StatusConflict,
	shared.ErrAlreadyExists.Code:    http.StatusConflict,
	shared.ErrUnauthorized.Code:     http.StatusUnauthorized,
	shared.ErrForbidden.Code:        http.StatusForbidden,
}

// transportHTTPStatus maps transport-level codes to HTTP status codes
var transportHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,
	ErrCodeInvalidID:   http.StatusBadRequest,
	ErrCodeForbidden:   http.StatusForbidden,
	ErrCodeNotFound:    http.StatusNotFound,
	ErrCodeTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for a transport error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := transportHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// StatusForDomainError returns the HTTP status for a domain error
func StatusForDomainError(err *shared.DomainError) int {
	if status, ok := codeHTTPStatus[err.Code]; ok {
		return status
	}
	if status, ok := kindHTTPStatus[err.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorFor converts any error into an HTTP status and error body.
// Non-domain errors are reported as ERR_INTERNAL without their text.
func ErrorFor(err error) (int, ErrorInfo) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, ErrorInfo{Code: ErrCodeInternal, Message: InternalErrorMessage}
	}
	info := ErrorInfo{
		Code:    domainErr.Code,
		Kind:    string(domainErr.Kind),
		Message: domainErr.Message,
	}
	if domainErr.Kind == shared.KindAtomicity {
		// the cause stays in the logs
		info.Message = domainErr.Message + ", no changes were saved"
	}
	return StatusForDomainError(domainErr), info
}
