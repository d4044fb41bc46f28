package goeq

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors returned by a System.
type ErrorCode string

const (
	// CodeConfig marks an invalid naming configuration or an open-ended
	// slice.
	CodeConfig ErrorCode = "CONFIG"

	// CodeArityMismatch marks a slice assignment whose value count differs
	// from the slice length.
	CodeArityMismatch ErrorCode = "ARITY_MISMATCH"

	// CodeKeyNotFound marks a lookup of an unbound variable or absent user key.
	CodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// CodeInvalidKey marks a key of a type the operation cannot use.
	CodeInvalidKey ErrorCode = "INVALID_KEY"

	// CodeInvalidValue marks an assigned value of the wrong type, such as a
	// non-expression bound to a variable.
	CodeInvalidValue ErrorCode = "INVALID_VALUE"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its code.
var (
	ErrConfig        = &Error{Code: CodeConfig, Message: "invalid configuration"}
	ErrArityMismatch = &Error{Code: CodeArityMismatch, Message: "arity mismatch"}
	ErrKeyNotFound   = &Error{Code: CodeKeyNotFound, Message: "key not found"}
	ErrInvalidKey    = &Error{Code: CodeInvalidKey, Message: "invalid key"}
	ErrInvalidValue  = &Error{Code: CodeInvalidValue, Message: "invalid value"}
)

// Error is the error type returned by goeq operations.
type Error struct {
	Code    ErrorCode
	Message string
	// Key is the rendered key involved, when there is one.
	Key string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, key string, format string, args ...any) *Error {
	return &Error{Code: code, Key: key, Message: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool { return errors.Is(err, ErrConfig) }

// IsArityMismatch reports whether err is a slice arity error.
func IsArityMismatch(err error) bool { return errors.Is(err, ErrArityMismatch) }

// IsKeyNotFound reports whether err is a missing key error.
func IsKeyNotFound(err error) bool { return errors.Is(err, ErrKeyNotFound) }
