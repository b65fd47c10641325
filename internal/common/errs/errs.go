// internal/common/errs/errs.go
// Error kinds shared by repositories, services and handlers

package errs

import (
	"errors"
	"net/http"
)

// Kinds. Services wrap these in *Error to attach the message shown to clients.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrAlreadyExists    = errors.New("already exists")
	ErrConflict         = errors.New("conflict")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrUnauthenticated  = errors.New("unauthenticated")

	// ErrTransientStore marks a store failure that outlived the retry policy.
	ErrTransientStore = errors.New("transient store failure")
)

// Error is a domain error carrying a client-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(message string) *Error         { return New(ErrNotFound, message) }
func InvalidOperation(message string) *Error { return New(ErrInvalidOperation, message) }
func AlreadyExists(message string) *Error    { return New(ErrAlreadyExists, message) }
func Conflict(message string) *Error         { return New(ErrConflict, message) }
func NotAuthorized(message string) *Error    { return New(ErrNotAuthorized, message) }
func Unauthenticated(message string) *Error  { return New(ErrUnauthenticated, message) }

// IsDomain reports whether err carries a domain outcome rather than an infrastructure failure.
func IsDomain(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Infrastructure errors never leak.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Server error"
}
