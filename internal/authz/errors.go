package authz

import (
	"errors"
	"fmt"
)

// Code classifies a per-request failure.
type Code int

const (
	CodeValidation Code = iota + 1
	CodeUnauthenticated
	CodeForbidden
	CodeNotFound
	CodeConflict
	CodeInvariant
)

// String returns the name of the code.
func (c Code) String() string {
	switch c {
	case CodeValidation:
		return "validation"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeForbidden:
		return "forbidden"
	case CodeNotFound:
		return "not_found"
	case CodeConflict:
		return "conflict"
	case CodeInvariant:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Error is a recoverable, per-request failure. Field is set for validation
// errors that concern a single input field.
type Error struct {
	Code    Code
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

func Validation(field, msg string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundKind returns the single NotFound error used for a resource kind,
// whether the resource is missing or merely invisible to the caller.
func NotFoundKind(kind Kind) *Error {
	return NotFound(fmt.Sprintf("%s not found", kind))
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func Invariant(msg string) *Error {
	return &Error{Code: CodeInvariant, Message: msg}
}

// CodeOf extracts the code of err. ok is false for errors outside the taxonomy.
func CodeOf(err error) (code Code, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
