package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so callers can react without matching on codes
type ErrorKind string

const (
	// KindValidation marks bad input shape or range
	KindValidation ErrorKind = "VALIDATION"
	// KindStateConflict marks an operation not allowed in the current entity state
	KindStateConflict ErrorKind = "STATE_CONFLICT"
	// KindNotFound marks an unknown id
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindAtomicity marks a composite operation that failed and was rolled back
	KindAtomicity ErrorKind = "ATOMICITY"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets errors.Is(err, ErrBillLocked) match errors carrying a custom message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Kind:    e.Kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewValidationError creates a domain error for bad input
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Kind: KindValidation, Message: message}
}

// NewStateConflictError creates a domain error for a disallowed state transition
func NewStateConflictError(code, message string) *DomainError {
	return &DomainError{Code: code, Kind: KindStateConflict, Message: message}
}

// NewNotFoundError creates a domain error for an unknown id
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Kind: KindNotFound, Message: message}
}

// NewAtomicityError reports that the composite operation op failed and was rolled back
func NewAtomicityError(op string, cause error) *DomainError {
	return &DomainError{
		Code:    "ATOMICITY_ERROR",
		Kind:    KindAtomicity,
		Message: fmt.Sprintf("%s was rolled back", op),
		cause:   cause,
	}
}

// KindOf returns the kind of a domain error, or "" for other errors
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// IsDomainError reports whether err carries a DomainError
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// Common domain errors
var (
	ErrNotFound      = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrInvalidInput  = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState  = NewStateConflictError("INVALID_STATE", "Operation not allowed in current state")
	ErrAtomicity     = &DomainError{Code: "ATOMICITY_ERROR", Kind: KindAtomicity, Message: "Composite operation was rolled back"}
	ErrUnauthorized  = NewValidationError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden     = NewValidationError("FORBIDDEN", "Access to this resource is forbidden")
	ErrAlreadyExists = NewStateConflictError("ALREADY_EXISTS", "Resource already exists")
)

// Ledger and entitlement errors
var (
	ErrInvalidAmount        = NewValidationError("INVALID_AMOUNT", "Amount must not be negative")
	ErrInvalidDiscount      = NewValidationError("INVALID_DISCOUNT", "Discount percentage must be between 0 and 100")
	ErrInvalidBillType      = NewValidationError("INVALID_BILL_TYPE", "Bill type is not allowed for this customer")
	ErrImmutableField       = NewValidationError("IMMUTABLE_FIELD", "Field cannot be changed after creation")
	ErrInvalidPaymentMethod = NewValidationError("INVALID_PAYMENT_METHOD", "Payment method is not supported")
	ErrBillLocked           = NewStateConflictError("BILL_LOCKED", "Bill can no longer be modified")
	ErrOverPayment          = NewStateConflictError("OVER_PAYMENT", "Payment exceeds the amount due")
	ErrAlreadyCancelled     = NewStateConflictError("ALREADY_CANCELLED", "Allocation is already cancelled or completed")
	ErrNoSessionsRemaining  = NewStateConflictError("NO_SESSIONS_REMAINING", "No sessions remaining on this allocation")
	ErrConcurrentUpdate     = NewStateConflictError("CONCURRENT_UPDATE", "Record was changed by another request, retry the operation")
	ErrPlanNotFound         = NewNotFoundError("PLAN_NOT_FOUND", "Membership plan not found")
	ErrPackageNotFound      = NewNotFoundError("PACKAGE_NOT_FOUND", "PT package not found")
	ErrCustomerNotFound     = NewNotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")
	ErrBillNotFound         = NewNotFoundError("BILL_NOT_FOUND", "Bill not found")
	ErrPaymentNotFound      = NewNotFoundError("PAYMENT_NOT_FOUND", "Payment not found")
	ErrAllocationNotFound   = NewNotFoundError("ALLOCATION_NOT_FOUND", "PT package allocation not found")
)
