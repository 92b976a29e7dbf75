package vcs

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrMalformedResponse is returned when a response
	// has a success status but its body cannot be
	// decoded into the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnsupportedOperation is returned by providers
	// for operations their platform does not offer.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// UnexpectedStatusError is returned when a provider
// answers with a status code outside 2xx. Body holds
// the response body verbatim.
type UnexpectedStatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

// Error implements error.
func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.URL, e.Body,
	)
}

// IsStatus reports whether err carries an
// UnexpectedStatusError with the given status code.
func IsStatus(err error, code int) bool {
	var se *UnexpectedStatusError

	return errors.As(err, &se) && se.StatusCode == code
}

// TransportError wraps a failure of the underlying
// HTTP transport (connection refused, timeout, ...).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf(
		"%s %s: %v", e.Method, e.URL, e.Err,
	)
}

// Unwrap returns the transport error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the request may
// succeed: network timeouts and expired deadlines.
func (e *TransportError) Transient() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}

	var ne net.Error

	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsTransient reports whether err is a TransportError
// worth retrying.
func IsTransient(err error) bool {
	var te *TransportError

	return errors.As(err, &te) && te.Transient()
}
