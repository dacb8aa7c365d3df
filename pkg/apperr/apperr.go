package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. Kinds are part of the API contract:
// clients switch on them, handlers map them to HTTP statuses.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindInsufficientStock  Kind = "insufficient_stock"
	KindPricingUnavailable Kind = "pricing_unavailable"
	KindNotFound           Kind = "not_found"
	KindInvalidOperation   Kind = "invalid_operation"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal_error"
)

// Error carries a stable kind, a client-safe message, and an optional wrapped
// cause. The cause is logged server-side and never serialized to clients.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap converts a lower-layer error (database, codec) into an internal error
// without leaking its details to the client.
func Wrap(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidOperation:
		return 400
	case KindNotFound:
		return 404
	case KindInsufficientStock, KindPricingUnavailable:
		return 422
	case KindConflict:
		return 409
	default:
		return 500
	}
}
