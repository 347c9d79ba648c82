// Package apperr defines the error kinds every layer agrees on.
//
// Services return *apperr.Error values; the HTTP layer maps the Kind to a
// status code and the caller sees a stable machine-readable "kind" next to
// the human message. Store and driver details stay in the wrapped error and
// only reach the logs.
//
//	if apperr.Is(err, apperr.InsufficientStock) {
//	    // ...
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable, caller-visible error category.
type Kind string

const (
	MissingToken       Kind = "missing_token"
	InvalidToken       Kind = "invalid_token"
	AccessDenied       Kind = "access_denied"
	UserNotFound       Kind = "user_not_found"
	ProductNotFound    Kind = "product_not_found"
	InvalidCredentials Kind = "invalid_credentials"
	DuplicateUsername  Kind = "duplicate_username"
	DuplicateProduct   Kind = "duplicate_product"
	InsufficientStock  Kind = "insufficient_stock"
	InvalidQuantity    Kind = "invalid_quantity"
	InvalidInput       Kind = "invalid_input"
	StoreUnavailable   Kind = "store_unavailable"
)

// Error carries a Kind, a message safe to show to callers, and an optional
// underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that keeps err as its cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Unavailable hides err behind a generic store_unavailable message.
func Unavailable(err error) *Error {
	return &Error{Kind: StoreUnavailable, Message: "store unavailable", Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-safe message of err. Errors without a Kind
// get a generic message so internal detail never leaks.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
