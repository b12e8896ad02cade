package api

import (
	stdErrors "errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
	"github.com/mozilla-ai/mcpconnect/internal/errors"
)

var _ huma.StatusError = (*ProxyError)(nil)

// ProxyError is the error body returned by every endpoint: {"error": "...", "details": "..."}.
type ProxyError struct {
	status int

	// Message is the human-readable reason for the failure.
	Message string `doc:"Reason the request failed" json:"error"`

	// Details carries the upstream response body when a tool server answered with a non-2xx status.
	Details string `doc:"Upstream response body" json:"details,omitempty"`
}

// NewProxyError creates a ProxyError with the given HTTP status.
func NewProxyError(status int, message string, details string) *ProxyError {
	return &ProxyError{
		status:  status,
		Message: message,
		Details: details,
	}
}

// Error implements error.
func (e *ProxyError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *ProxyError) GetStatus() int {
	return e.status
}

// MapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 404: Resource not found errors
//   - 408: Tool server did not answer in time
//   - 409: Request conflicts with the server's current state
//   - 503: Tool server could not be reached
//   - upstream status: Tool server answered with a non-2xx status
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to:
// 1. Add test cases to TestMapError (internal/api/errors_test.go)
// 2. Update the documentation in internal/errors/errors.go
func MapError(logger hclog.Logger, err error) huma.StatusError {
	var pe *ProxyError
	if stdErrors.As(err, &pe) {
		return pe
	}

	var failure *domain.Failure
	if stdErrors.As(err, &failure) {
		return NewProxyError(FailureStatus(failure), failure.Message, failure.Body)
	}

	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return NewProxyError(http.StatusBadRequest, err.Error(), "")
	case stdErrors.Is(err, errors.ErrServerNotFound):
		return NewProxyError(http.StatusNotFound, err.Error(), "")
	case stdErrors.Is(err, errors.ErrServerDisabled):
		return NewProxyError(http.StatusConflict, err.Error(), "")
	case stdErrors.Is(err, errors.ErrUpstreamTimeout):
		return NewProxyError(http.StatusRequestTimeout, err.Error(), "")
	case stdErrors.Is(err, errors.ErrUpstreamUnreachable):
		return NewProxyError(http.StatusServiceUnavailable, err.Error(), "")
	case stdErrors.Is(err, errors.ErrUpstreamFailure):
		logger.Error("Tool server error", "error", err)
		return NewProxyError(http.StatusBadGateway, err.Error(), "")
	default:
		logger.Error("Unexpected error handling request", "error", err)
		return NewProxyError(http.StatusInternalServerError, "Internal server error", "")
	}
}

// FailureStatus returns the HTTP status for a classified failure.
// A ServerFailure reuses the upstream status when it is an error status, otherwise 500.
func FailureStatus(f *domain.Failure) int {
	switch f.Kind {
	case domain.FailureValidation:
		return http.StatusBadRequest
	case domain.FailureTimeout:
		return http.StatusRequestTimeout
	case domain.FailureUnreachable:
		return http.StatusServiceUnavailable
	default:
		if f.StatusCode >= http.StatusBadRequest && f.StatusCode <= 599 {
			return f.StatusCode
		}
		return http.StatusInternalServerError
	}
}

// ErrorHandler wraps error handling for the application when converting to API friendly errors.
// It is intended to be installed as huma.NewErrorWithContext, so errors raised by huma itself
// (e.g. request validation) use the same body shape as handler errors.
func ErrorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if len(errs) == 0 {
			return NewProxyError(status, msg, "")
		}

		combinedErr := stdErrors.Join(errs...)
		if status >= http.StatusInternalServerError {
			return MapError(logger, combinedErr)
		}

		return NewProxyError(status, msg, combinedErr.Error())
	}
}
