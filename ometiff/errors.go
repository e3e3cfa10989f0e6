package ometiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed, mirroring the error-kind
// taxonomy libtiff-backed OME-TIFF readers converge on rather than
// exposing the underlying cause type directly.
type Kind int

const (
	InvalidState Kind = iota
	OutOfRange
	FormatInvalid
	FieldShapeMismatch
	InconsistentUUID
	IncompletePlanes
	UnsupportedPixelType
	WrongPixelType
	IO
	MetadataMissing
)

var kindNames = [...]string{
	"InvalidState", "OutOfRange", "FormatInvalid", "FieldShapeMismatch",
	"InconsistentUUID", "IncompletePlanes", "UnsupportedPixelType",
	"WrongPixelType", "IO", "MetadataMissing",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Error is the single exported error type every fallible operation in
// this module returns, carrying a Kind plus an optionally wrapped cause.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("ometiff: %s: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("ometiff: %s: %s", e.kind, e.msg)
}

// Kind returns e's error kind.
func (e *Error) Kind() Kind { return e.kind }

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error { return e.cause }

// newErr constructs a Kind-tagged Error with a formatted message.
func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapErr constructs a Kind-tagged Error wrapping cause, using
// github.com/pkg/errors so the resulting stack trace survives through
// the wrap the way mdouchement-tiff's error handling relies on.
func wrapErr(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.kind == kind
}
