package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when something is not found
	ErrNotFound = errors.New("item not found")

	ErrValidation = errors.New("validation failed")
	ErrBackend    = errors.New("backend request failed")
	ErrUpload     = errors.New("upload failed")
	ErrAuth       = errors.New("authentication rejected")
)

// Error carries one of the Err* kinds above, a message fit for the user
// and the underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func NewValidationError(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func NewBackendError(msg string, err error) error {
	return &Error{Kind: ErrBackend, Message: msg, Err: err}
}

func NewUploadError(msg string, err error) error {
	return &Error{Kind: ErrUpload, Message: msg, Err: err}
}

func NewAuthError(msg string, err error) error {
	return &Error{Kind: ErrAuth, Message: msg, Err: err}
}

// Message returns the user facing part of err.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
