package service

import "fmt"

// PermissionError: the acting role may not edit the section or perform the
// transition. Local, user-facing, non-retryable.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }

// ValidationError: malformed input, rejected before any persistence write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError: the entry does not exist.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// DerivationFailure: the recipe lookup failed or timed out. Logged and
// swallowed by callers; the prior ingredient list stays untouched.
type DerivationFailure struct {
	ProductID string
	Err       error
}

func (e *DerivationFailure) Error() string {
	return fmt.Sprintf("recipe derivation failed for product %q: %v", e.ProductID, e.Err)
}

func (e *DerivationFailure) Unwrap() error { return e.Err }

func permissionf(format string, args ...interface{}) error {
	return &PermissionError{Msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}
