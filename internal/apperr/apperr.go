// Package apperr defines the stable error kinds the marketplace core returns
// and their mapping to HTTP statuses. Handlers match kinds with errors.Is and
// never expose anything beyond the attached human-readable message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means no principal could be resolved for the request
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the principal lacks the required employer/employee relationship
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced entity is absent, or exists but must not
	// be confirmed to the caller
	ErrNotFound = errors.New("not found")
	// ErrConflict means a uniqueness constraint rejected the write
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument means malformed or out-of-enum input
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error pairs an error kind with a caller-facing message.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// Unwrap exposes the kind so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New builds an Error of the given kind with a formatted message.
func New(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error to the status code handlers should respond with.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing message for an error. Internal errors get
// a generic message so no store or stack detail leaks out.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "Unexpected server error"
}
