package service

import "fmt"

// ValidationError is a client-caused failure: missing fields or a
// value outside a closed enum. Surfaced verbatim, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AuthorizationError means the capability or ownership check failed;
// no state was changed.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NotFoundError covers absent reports, tracking ids and actors.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
