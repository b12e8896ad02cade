// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
//
// Don't forget to:
// 1. Add your error to MapError (internal/api/errors.go)
// 2. Add a test case to TestMapError (internal/api/errors_test.go)
// 3. Consider if existing handler tests need updates
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// This covers the ValidationFailure kind, e.g. a missing base URL or tool name.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrUpstreamTimeout indicates that a tool server did not respond before the request deadline.
	// Recommended to map to HTTP 408 Request Timeout.
	ErrUpstreamTimeout = errors.New("tool server request timed out")

	// ErrUpstreamUnreachable indicates that a tool server could not be contacted at all
	// (connection refused, DNS failure, network unreachable).
	// Recommended to map to HTTP 503 Service Unavailable.
	ErrUpstreamUnreachable = errors.New("tool server unreachable")

	// ErrUpstreamFailure indicates that a tool server answered, but with a non-2xx status or a malformed body.
	// Recommended to map to the upstream status code when known, otherwise HTTP 500.
	ErrUpstreamFailure = errors.New("tool server error")

	// ErrServerNotFound indicates that the requested tool server is not registered.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrServerDisabled indicates that the requested tool server is registered but disabled,
	// so it is excluded from refresh cycles and tool calls.
	// Recommended to map to HTTP 409 Conflict.
	ErrServerDisabled = errors.New("server disabled")
)
