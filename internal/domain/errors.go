package domain

import (
	"errors"
	"fmt"
)

// RemoteCallError reports a failure at the HTTP transport layer: connection
// refused, timeout, non-2xx status, undecodable body. It is distinguishable
// from "the remote answered with an empty result", which is represented as a
// nil value, never as an error.
type RemoteCallError struct {
	Op  string
	URL string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// IsRemoteCallError reports whether err wraps a RemoteCallError.
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}

// ValidationError reports a required argument that is missing or empty.
// It is raised before any remote call and is never swallowed.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
