package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain failure independently of any transport.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "VALIDATION_FAILED"
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	CodeNotPending        ErrorCode = "NOT_PENDING"
	CodeCapacityExceeded  ErrorCode = "CAPACITY_EXCEEDED"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeBusy              ErrorCode = "BUSY"
)

// Sentinels for errors.Is. Matching is by code only.
var (
	ErrValidation        = &DomainError{Code: CodeValidation}
	ErrInvalidArgument   = &DomainError{Code: CodeInvalidArgument}
	ErrNotFound          = &DomainError{Code: CodeNotFound}
	ErrUnauthorized      = &DomainError{Code: CodeUnauthorized}
	ErrForbidden         = &DomainError{Code: CodeForbidden}
	ErrIllegalTransition = &DomainError{Code: CodeIllegalTransition}
	ErrNotPending        = &DomainError{Code: CodeNotPending}
	ErrCapacityExceeded  = &DomainError{Code: CodeCapacityExceeded}
	ErrConflict          = &DomainError{Code: CodeConflict}
	ErrBusy              = &DomainError{Code: CodeBusy}
)

// DomainError is a typed, expected failure. Reason is a stable machine-readable
// detail (e.g. "stay_too_long") and may be empty.
type DomainError struct {
	Code    ErrorCode
	Reason  string
	Message string
}

func (e *DomainError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithReason returns a copy of e carrying the given reason.
func (e *DomainError) WithReason(reason string) *DomainError {
	cp := *e
	cp.Reason = reason
	return &cp
}

// NewValidationError creates a VALIDATION_FAILED error.
func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

// NewRejection creates a VALIDATION_FAILED error with a reason code.
func NewRejection(reason, message string) *DomainError {
	return &DomainError{Code: CodeValidation, Reason: reason, Message: message}
}

// NewInvalidArgumentError creates an INVALID_ARGUMENT error.
func NewInvalidArgumentError(message string) *DomainError {
	return &DomainError{Code: CodeInvalidArgument, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error for the given entity.
func NewNotFoundError(entity, id string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewUnauthorizedError creates an UNAUTHORIZED error.
func NewUnauthorizedError(message string) *DomainError {
	return &DomainError{Code: CodeUnauthorized, Message: message}
}

// NewForbiddenError creates a FORBIDDEN error.
func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

// NewInvalidStateError creates an ILLEGAL_TRANSITION error.
func NewInvalidStateError(from, to string) *DomainError {
	return &DomainError{
		Code:    CodeIllegalTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewNotPendingError creates a NOT_PENDING error.
func NewNotPendingError(current string) *DomainError {
	return &DomainError{
		Code:    CodeNotPending,
		Message: fmt.Sprintf("booking is not pending (current status: %s)", current),
	}
}

// NewCapacityExceededError creates a CAPACITY_EXCEEDED error.
func NewCapacityExceededError(message string) *DomainError {
	return &DomainError{Code: CodeCapacityExceeded, Reason: "no_capacity", Message: message}
}

// NewConflictError creates a CONFLICT error.
func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

// NewBusyError creates a retryable BUSY error.
func NewBusyError(message string) *DomainError {
	return &DomainError{Code: CodeBusy, Message: message}
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
