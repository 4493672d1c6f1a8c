// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charmstore

import (
	"github.com/juju/errors"

	"github.com/juju/csclient/charmstore/transport"
)

// EntityNotFoundError is returned when the store reports that the
// requested entity, or one of its files, does not exist.
type EntityNotFoundError struct {
	// URL is the request that found nothing.
	URL string
}

// Error implements the error interface. The message is the request URL.
func (e *EntityNotFoundError) Error() string {
	return e.URL
}

// Is allows errors.Is(err, errors.NotFound).
func (e *EntityNotFoundError) Is(target error) bool {
	return target == errors.NotFound
}

// ServerError is returned for every failure that is not an absent
// entity: unexpected status codes, undecodable bodies and transport
// failures.
type ServerError struct {
	// Code is the HTTP status code, zero when no response was received.
	Code int

	// Message combines the request URL, the status code and the raw body.
	Message string

	// APIError holds the decoded error envelope, if the body was one.
	APIError *transport.APIError

	timeout bool
	cause   error
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return e.Message
}

// Timeout reports whether the request timed out.
func (e *ServerError) Timeout() bool {
	return e.timeout
}

// Is allows errors.Is(err, errors.Timeout) for timeouts.
func (e *ServerError) Is(target error) bool {
	return e.timeout && target == errors.Timeout
}

// Unwrap returns the transport error, if any.
func (e *ServerError) Unwrap() error {
	return e.cause
}

// IsEntityNotFound reports whether err is, or wraps, an
// *EntityNotFoundError.
func IsEntityNotFound(err error) bool {
	var target *EntityNotFoundError
	return errors.As(err, &target)
}

// IsServerError reports whether err is, or wraps, a *ServerError.
func IsServerError(err error) bool {
	var target *ServerError
	return errors.As(err, &target)
}
