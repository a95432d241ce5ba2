package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so callers can match on the class of
// error instead of parsing messages.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindBusinessRule
	KindAuthentication
	KindInvalidToken
	KindTokenExpired
	KindNotFound
	KindConflict
)

// Kind sentinels for errors.Is matching. A wrapped *Error matches the
// sentinel of its own kind; invalid-token and token-expired errors also
// match ErrAuthentication since they are authentication failures.
var (
	ErrValidation     = errors.New("validation error")
	ErrBusinessRule   = errors.New("business rule violation")
	ErrAuthentication = errors.New("authentication error")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrNotFound       = errors.New("entity not found")
	ErrConflict       = errors.New("conflict")
)

// Error is a domain failure with a kind and a human-readable message.
// All domain errors are recoverable, per-request conditions.
type Error struct {
	kind Kind
	msg  string
	err  error
}

// NewError creates a domain error of the given kind.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// WrapError creates a domain error of the given kind wrapping an underlying cause.
func WrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether the error matches one of the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.kind == KindValidation
	case ErrBusinessRule:
		return e.kind == KindBusinessRule
	case ErrAuthentication:
		return e.kind == KindAuthentication || e.kind == KindInvalidToken || e.kind == KindTokenExpired
	case ErrInvalidToken:
		return e.kind == KindInvalidToken
	case ErrTokenExpired:
		return e.kind == KindTokenExpired
	case ErrNotFound:
		return e.kind == KindNotFound
	case ErrConflict:
		return e.kind == KindConflict
	}
	return false
}
