package client

import (
	"errors"
	"fmt"
)

// Kind classifies where a call failed
type Kind string

const (
	// KindNetwork means the request never produced a response
	KindNetwork Kind = "network"
	// KindHTTP means a non-success status with no usable error envelope
	KindHTTP Kind = "http"
	// KindBackend means the envelope carried a non-null error
	KindBackend Kind = "backend"
	// KindDecode means the body could not be parsed
	KindDecode Kind = "decode"
)

// Error is the single error type returned by every Client operation
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether the server rejected the credentials
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == 401
}

// IsNotFound reports whether the server answered 404
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == 404
}

func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "Unable to reach the server. Please check your connection and try again.",
		Err:     err,
	}
}

func decodeError(status int, err error) *Error {
	return &Error{
		Kind:    KindDecode,
		Message: fmt.Sprintf("Unexpected response from the server (status %d)", status),
		Status:  status,
		Err:     err,
	}
}

func httpError(status int, statusText string) *Error {
	return &Error{
		Kind:    KindHTTP,
		Message: fmt.Sprintf("Request failed: %s", statusText),
		Status:  status,
	}
}

// Result holds the outcome of a call for callers that keep it around
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the call succeeded
func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// ResultOf packs a (value, error) pair
func ResultOf[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}
