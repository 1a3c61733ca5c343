package services

import (
	"errors"
	"fmt"

	"khosta-backend-go/internal/store"
)

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

// ValidationError carries every rule a submission broke.
type ValidationError struct {
	Message    string
	Violations Violations
}

func (e ValidationError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: 404, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: 400, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: 403, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: 401, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Status: 409, Message: msg}
}

func ErrInvalid(msg string, violations Violations) error {
	return ValidationError{Message: msg, Violations: violations}
}

func invalidField(field, message string) error {
	return ErrInvalid(message, Violations{{Field: field, Message: message}})
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// storeError turns backend sentinels into client-facing errors and wraps
// anything else for logging at the HTTP edge.
func storeError(err error, notFound, duplicate, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound) && notFound != "":
		return ErrNotFound(notFound)
	case errors.Is(err, store.ErrDuplicate) && duplicate != "":
		return ErrConflict(duplicate)
	default:
		return WrapError(err, op)
	}
}
