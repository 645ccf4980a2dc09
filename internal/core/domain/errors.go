package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a business error with a structured error code.
// Message is the client-facing text written by the transport.
type DomainError struct {
	Code    string // Error code (e.g., "PX-PIX-4002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support by comparing codes.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Request errors (REQ).
var (
	// ErrInvalidJSON indicates the request body is not JSON.
	ErrInvalidJSON = NewDomainError("PX-REQ-4000", "Invalid JSON")

	// ErrBadPayload indicates missing or mistyped x, y or color fields.
	ErrBadPayload = NewDomainError("PX-REQ-4001", "Bad payload")
)

// Pixel errors (PIX).
var (
	// ErrOutOfBounds indicates a coordinate outside the canvas.
	ErrOutOfBounds = NewDomainError("PX-PIX-4002", "Out of bounds")

	// ErrInvalidColor indicates a color that is not "#RRGGBB".
	ErrInvalidColor = NewDomainError("PX-PIX-4003", "Invalid color")
)

// Rate errors (RATE).
var (
	// ErrCooldown indicates the client wrote too recently.
	// Concrete rejections are reported as *CooldownError.
	ErrCooldown = NewDomainError("PX-RATE-4290", "Cooldown")
)

// System errors (SYS).
var (
	// ErrNotFound indicates an unknown route.
	ErrNotFound = NewDomainError("PX-SYS-4040", "Not found")

	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewDomainError("PX-SYS-5000", "Internal error")

	// ErrIOFailure indicates the snapshot could not be persisted.
	ErrIOFailure = NewDomainError("PX-SYS-5001", "Persistence failure")
)

// CooldownError is returned when a write is rejected by the cooldown ledger.
// It matches ErrCooldown under errors.Is.
type CooldownError struct {
	// Remaining is the time left until the identity may write again.
	Remaining time.Duration
}

// NewCooldownError creates a CooldownError for the remaining wait.
func NewCooldownError(remaining time.Duration) *CooldownError {
	return &CooldownError{Remaining: remaining}
}

// Error returns the client-facing message, e.g. "Cooldown: wait 3s".
func (e *CooldownError) Error() string {
	return fmt.Sprintf("Cooldown: wait %ds", e.WaitSeconds())
}

// WaitSeconds is Remaining rounded down to a whole second.
func (e *CooldownError) WaitSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int(e.Remaining / time.Second)
}

// RetryAfterSeconds is Remaining rounded up to a whole second.
func (e *CooldownError) RetryAfterSeconds() int {
	if e.Remaining <= 0 {
		return 0
	}
	return int((e.Remaining + time.Second - 1) / time.Second)
}

// Unwrap exposes ErrCooldown so code-based helpers see the rejection.
func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}
