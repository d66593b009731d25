package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors for repository-level error discrimination.
// Repositories wrap these so services can branch without depending on the
// storage SDK's error types.
var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a failed conditional write: the stored item no
	// longer matches what the caller read.
	ErrConflict = errors.New("conflict")
)

// Kind is the caller-facing failure class. Values are stable and match the
// callable-function error codes clients already switch on.
type Kind string

const (
	KindInvalidArgument    Kind = "invalid-argument"
	KindFailedPrecondition Kind = "failed-precondition"
	KindResourceExhausted  Kind = "resource-exhausted"
	KindNotFound           Kind = "not-found"
	KindAlreadyExists      Kind = "already-exists"
	KindDeadlineExceeded   Kind = "deadline-exceeded"
	KindUnauthenticated    Kind = "unauthenticated"
	KindInternal           Kind = "internal"
)

// Status returns the upper-case status string used in the callable error envelope.
func (k Kind) Status() string {
	switch k {
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindFailedPrecondition:
		return "FAILED_PRECONDITION"
	case KindResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindAlreadyExists:
		return "ALREADY_EXISTS"
	case KindDeadlineExceeded:
		return "DEADLINE_EXCEEDED"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps the kind to the HTTP status code of the callable protocol.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidArgument, KindFailedPrecondition:
		return http.StatusBadRequest
	case KindResourceExhausted:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	case KindDeadlineExceeded:
		return http.StatusGatewayTimeout
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to the caller;
// Err carries the underlying cause for server-side logs only.
type Error struct {
	Kind    Kind
	Message string
	// Details is optional structured data returned to the caller.
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with no underlying cause.
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError builds a classified error that keeps cause for logging.
func WrapError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// WithDetails attaches caller-visible structured data and returns e.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// AsError reports whether err is (or wraps) a classified error.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
