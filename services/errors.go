package services

import (
	"errors"
	"fmt"

	"habit-battle-system/repository"
)

// ErrorKind categorizes domain failures so the HTTP boundary can pick a status code.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
	KindPrecondition
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition"
	default:
		return "internal"
	}
}

// Error is the categorized error every service operation returns.
// Message is safe to hand to clients as-is.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func conflictError(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func preconditionError(format string, args ...any) *Error {
	return newError(KindPrecondition, format, args...)
}

func unauthorizedError(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

// internalError wraps an unexpected failure (usually persistence) under message.
func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// lookupError turns a repository read failure into NotFound or Internal.
func lookupError(what string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("%s not found", what)
	}
	return internalError("failed to load "+what, err)
}

// KindOf reports the category of err; anything uncategorized is internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// passThrough keeps categorized errors and wraps everything else as internal.
func passThrough(message string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return internalError(message, err)
}
