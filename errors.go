package duckvec

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes duckvec errors.
type ErrorKind int

const (
	// ErrGeneric is an uncategorized error.
	ErrGeneric ErrorKind = iota
	// ErrDisposedKind marks access after the owning handle was released.
	ErrDisposedKind
	// ErrConcurrencyKind marks a violated exclusivity or disposal contract.
	ErrConcurrencyKind
	// ErrUnsupportedKind marks a (value kind, Go type) pair with no converter.
	ErrUnsupportedKind
	// ErrInvalidStateKind marks a decoded value with no representation in the
	// requested type, such as a null row read through a non-optional
	// converter or an enum code with no registered member.
	ErrInvalidStateKind
	// ErrOutOfRangeKind marks an index or offset outside a documented bound.
	ErrOutOfRangeKind
	// ErrOpen is a database open error reported by the engine.
	ErrOpen
	// ErrPrepare is a statement preparation error reported by the engine.
	ErrPrepare
	// ErrBindKind is a parameter binding error.
	ErrBindKind
	// ErrQueryKind is a query execution error reported by the engine.
	ErrQueryKind
	// ErrLibrary is a native library discovery or loading error.
	ErrLibrary
)

// Sentinels for errors.Is matching. Every *Error carries one of these as its
// identity, so callers can branch without unpacking the struct.
var (
	ErrDisposed              = errors.New("duckvec: object disposed")
	ErrConcurrentAccess      = errors.New("duckvec: concurrent access violation")
	ErrUnsupportedConversion = errors.New("duckvec: unsupported conversion")
	ErrInvalidState          = errors.New("duckvec: invalid state")
	ErrOutOfRange            = errors.New("duckvec: out of range")
)

// Error is the structured error type used throughout the package.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("duckvec: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("duckvec: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel associated with the error's kind, so
// errors.Is(err, ErrDisposed) works on any disposed-kind error.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDisposed:
		return e.Kind == ErrDisposedKind
	case ErrConcurrentAccess:
		return e.Kind == ErrConcurrencyKind
	case ErrUnsupportedConversion:
		return e.Kind == ErrUnsupportedKind
	case ErrInvalidState:
		return e.Kind == ErrInvalidStateKind
	case ErrOutOfRange:
		return e.Kind == ErrOutOfRangeKind
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NewError creates a new Error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsError checks if an error is a duckvec error of a specific kind.
func IsError(err error, kind ErrorKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

func errDisposed(what string) *Error {
	return errorf(ErrDisposedKind, "%s is disposed", what)
}

func errOutOfRange(what string, idx, bound uint64) *Error {
	return errorf(ErrOutOfRangeKind, "%s index %d out of range (bound %d)", what, idx, bound)
}

func errUnsupported(kind Kind, goType string) *Error {
	return errorf(ErrUnsupportedKind, "no conversion from %s to Go type %s", kind, goType)
}
