package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// notFound marks a referenced entity as absent. It is a normal value in most
// read paths (a brand new identity has no profile yet) and only becomes a 404
// at the API boundary.
type notFound struct {
	message string
}

func NewNotFoundError(msg string) error {
	return &notFound{message: msg}
}

func (e notFound) Error() string {
	return e.message
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*notFound)
	return ok
}

// permissionDenied is returned when the caller's role does not allow the
// requested operation. It is always surfaced, never silently dropped.
type permissionDenied struct {
	message string
}

func NewPermissionError(msg string) error {
	return &permissionDenied{message: msg}
}

func (e permissionDenied) Error() string {
	return e.message
}

func IsPermissionDenied(err error) bool {
	_, ok := errors.Cause(err).(*permissionDenied)
	return ok
}

var ErrPermissionDenied = NewPermissionError("permission denied")

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
