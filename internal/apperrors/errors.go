// Package apperrors defines the error kinds shared by the office assistant's
// components. Callers classify failures with errors.Is against these sentinels
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication means the user could not be authorized, or consent was
	// denied or cancelled
	ErrAuthentication = errors.New("authentication failed")

	// ErrProvider means a remote calendar or mail service rejected the request
	ErrProvider = errors.New("provider request failed")

	// ErrValidation means caller-supplied data could not be used as given
	ErrValidation = errors.New("invalid input")

	// ErrAlreadyExists means a record with the same identity already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrStorage means the local database could not be opened, read or written
	ErrStorage = errors.New("storage failure")

	// ErrUnknownAction means no action is registered under the requested name
	ErrUnknownAction = errors.New("unknown action")
)

// Wrap annotates err with a kind so that errors.Is matches both the kind and
// the original cause. A nil err yields nil
func Wrap(kind error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), kind, err)
}

// New creates an error of the given kind with a formatted message
func New(kind error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), kind)
}

// HTTPStatus maps an error to the status code the HTTP surface reports for it
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrAuthentication):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
