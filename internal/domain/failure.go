package domain

import (
	"fmt"

	"github.com/mozilla-ai/mcpconnect/internal/errors"
)

const (
	FailureValidation  FailureKind = "validation"
	FailureTimeout     FailureKind = "timeout"
	FailureUnreachable FailureKind = "unreachable"
	FailureServer      FailureKind = "server"
)

// FailureKind classifies why a call to a tool server did not succeed.
type FailureKind string

// Failure is a classified, human-readable failure from a call to a tool server.
// It is returned as a value rather than propagated, and unwraps to the matching sentinel in internal/errors.
type Failure struct {
	Kind FailureKind

	// Message is suitable for display as a server's error detail.
	Message string

	// StatusCode is the upstream HTTP status, zero when no response was received.
	StatusCode int

	// Body is the upstream response text for ServerFailure, when available.
	Body string
}

// Error implements error.
func (f *Failure) Error() string {
	return f.Message
}

// Unwrap allows errors.Is to match the failure against the sentinel errors for its kind.
func (f *Failure) Unwrap() error {
	switch f.Kind {
	case FailureValidation:
		return errors.ErrBadRequest
	case FailureTimeout:
		return errors.ErrUpstreamTimeout
	case FailureUnreachable:
		return errors.ErrUpstreamUnreachable
	default:
		return errors.ErrUpstreamFailure
	}
}

// NewValidationFailure returns a Failure for missing or invalid caller input.
func NewValidationFailure(format string, args ...any) *Failure {
	return &Failure{Kind: FailureValidation, Message: fmt.Sprintf(format, args...)}
}
