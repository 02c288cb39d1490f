package domain

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream failure")
	ErrRateLimited  = errors.New("too many requests")
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)

	ErrUsernameTaken    = fmt.Errorf("username already exists: %w", ErrValidation)
	ErrEmailTaken       = fmt.Errorf("email already exists: %w", ErrValidation)
	ErrPasswordMismatch = fmt.Errorf("passwords do not match: %w", ErrValidation)
	ErrBadCredentials   = fmt.Errorf("invalid username or password: %w", ErrUnauthorized)
	ErrInvalidToken     = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)
	ErrInvalidOTP       = fmt.Errorf("invalid otp: %w", ErrValidation)
	ErrTooManyAttempts  = fmt.Errorf("too many otp attempts, request a new code: %w", ErrRateLimited)

	ErrInvalidSignature = fmt.Errorf("invalid payment signature: %w", ErrValidation)
	ErrAlreadyPaid      = fmt.Errorf("order already paid with a different payment: %w", ErrConflict)
	ErrOrderPaid        = fmt.Errorf("order is already paid: %w", ErrConflict)
	ErrOrderForbidden   = fmt.Errorf("order belongs to another user: %w", ErrForbidden)
	ErrGatewayFailure   = fmt.Errorf("payment gateway: %w", ErrUpstream)
	ErrMailFailure      = fmt.Errorf("mail service: %w", ErrUpstream)
)

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
