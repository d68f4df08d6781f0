package service

import "errors"

// Service error taxonomy. Each kind maps to exactly one client-facing status
// in the HTTP layer; none of them is retried internally.

// NotFoundError marks an entity that is absent or not visible to the caller.
type NotFoundError struct{ msg string }

func (e *NotFoundError) Error() string { return e.msg }

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(msg string) error { return &NotFoundError{msg: msg} }

// PermissionError marks a visibility or ownership rule violation.
type PermissionError struct{ msg string }

func (e *PermissionError) Error() string { return e.msg }

// NewPermissionError creates a PermissionError
func NewPermissionError(msg string) error { return &PermissionError{msg: msg} }

// ValidationError marks a malformed payload or an unexportable document.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError creates a ValidationError
func NewValidationError(msg string) error { return &ValidationError{msg: msg} }

// UnauthorizedError marks rejected or unverifiable credentials, including
// upstream identity provider failures.
type UnauthorizedError struct{ msg string }

func (e *UnauthorizedError) Error() string { return e.msg }

// NewUnauthorizedError creates an UnauthorizedError
func NewUnauthorizedError(msg string) error { return &UnauthorizedError{msg: msg} }

// ConflictError marks a uniqueness violation surfaced to the caller, e.g. a
// duplicate registration email.
type ConflictError struct{ msg string }

func (e *ConflictError) Error() string { return e.msg }

// NewConflictError creates a ConflictError
func NewConflictError(msg string) error { return &ConflictError{msg: msg} }

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsPermission reports whether err is a PermissionError
func IsPermission(err error) bool {
	var e *PermissionError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsUnauthorized reports whether err is an UnauthorizedError
func IsUnauthorized(err error) bool {
	var e *UnauthorizedError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}
