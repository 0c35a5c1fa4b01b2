package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to the user.
type Kind string

const (
	KindAuth          Kind = "auth"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindInternal      Kind = "internal"
)

// Error carries a user-facing message alongside an optional cause that is
// logged but never shown.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

func Auth(message string) *Error          { return New(KindAuth, message) }
func Authorization(message string) *Error { return New(KindAuthorization, message) }
func Validation(message string) *Error    { return New(KindValidation, message) }
func Conflict(message string) *Error      { return New(KindConflict, message) }

func NotFound(resource string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found.", resource))
}

func Internal(err error, message string) *Error {
	return Wrap(err, KindInternal, message)
}

// As extracts an *Error from the chain. Unknown errors come back as
// KindInternal with a generic message.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err, "Something went wrong. Please try again.")
}

func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
