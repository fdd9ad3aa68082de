package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by every missing-entity error so handlers can map
// them to a 404 with errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError aborts an operation before any write happens.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AuthorizationError is surfaced as a 403; the role check itself lives
// upstream of the core services.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func Authorization(format string, args ...any) error {
	return &AuthorizationError{Message: fmt.Sprintf(format, args...)}
}

func IsAuthorization(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

func NotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}
