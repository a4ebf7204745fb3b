package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Event errors
	ErrMsgEventNotFound      = "event not found"
	ErrMsgEventAlreadyExists = "event already exists for window"
	ErrMsgEventInactive      = "event is not active"

	// Progress errors
	ErrMsgProgressNotFound   = "progress not found"
	ErrMsgCompletionNotFound = "completion not found"

	// Validation errors
	ErrMsgInvalidInput       = "invalid input"
	ErrMsgInvalidTimezone    = "invalid timezone"
	ErrMsgInvertedInterval   = "start time must be before end time"
	ErrMsgMissingRequirement = "requirements must not be empty"

	// Store errors
	ErrMsgStoreUnavailable = "event store unavailable"

	// Reward errors
	ErrMsgGrantFailed = "reward grant failed"
)

// Common domain errors
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	ErrEventNotFound      = errors.New(ErrMsgEventNotFound)
	ErrEventAlreadyExists = errors.New(ErrMsgEventAlreadyExists)
	ErrEventInactive      = errors.New(ErrMsgEventInactive)

	ErrProgressNotFound   = errors.New(ErrMsgProgressNotFound)
	ErrCompletionNotFound = errors.New(ErrMsgCompletionNotFound)

	ErrInvalidInput     = errors.New(ErrMsgInvalidInput)
	ErrInvalidTimezone  = errors.New(ErrMsgInvalidTimezone)
	ErrInvertedInterval = errors.New(ErrMsgInvertedInterval)

	ErrStoreUnavailable = errors.New(ErrMsgStoreUnavailable)
	ErrGrantFailed      = errors.New(ErrMsgGrantFailed)
)

// ValidationError reports a malformed request. It is the caller's fault and is never retried.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

// NewValidationError builds a ValidationError wrapping err with optional field details.
func NewValidationError(err error, fields map[string]string) *ValidationError {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("validation failed: %v (%s)", e.Err, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError wraps a transient store failure. Whole operations are safe to retry.
type StoreError struct {
	Op  string
	Err error
}

// NewStoreError wraps err as a StoreError for op.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrMsgStoreUnavailable, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStoreUnavailable) match any StoreError.
func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// GrantError reports a partially applied reward set. Applied grants are not rolled back.
type GrantError struct {
	EventID   string
	PlayerID  string
	RewardKey string
	Granted   []string
	Err       error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("%s: event %s player %s reward %s (granted %d before failure): %v",
		ErrMsgGrantFailed, e.EventID, e.PlayerID, e.RewardKey, len(e.Granted), e.Err)
}

func (e *GrantError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrGrantFailed) match any GrantError.
func (e *GrantError) Is(target error) bool { return target == ErrGrantFailed }
