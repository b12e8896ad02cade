// Package upstream talks to tool servers over HTTP.
// It probes their introspection endpoints and relays tool invocations,
// classifying every failure into a domain.Failure value instead of returning it as an error.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// Client performs bounded-timeout HTTP calls against tool servers.
// It is stateless apart from its configuration and is safe for concurrent use.
// NewClient should be used to create instances of Client.
type Client struct {
	logger       hclog.Logger
	httpClient   *http.Client
	timeout      time.Duration
	toolCallPath string
	maxBodyBytes int64
}

// response is what was received from a tool server before any interpretation.
type response struct {
	statusCode int
	body       []byte
	latency    time.Duration
}

// NewClient creates a Client, applying default options first and then the supplied options.
func NewClient(logger hclog.Logger, opt ...Option) (*Client, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream client options: %w", err)
	}

	return &Client{
		logger:       logger.Named("upstream"),
		httpClient:   opts.HTTPClient,
		timeout:      opts.Timeout,
		toolCallPath: opts.ToolCallPath,
		maxBodyBytes: opts.MaxBodyBytes,
	}, nil
}

// Timeout returns the deadline applied to each call.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// NormalizeBaseURL trims whitespace and any trailing slashes from a base URL.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// do sends a single request and reads the response body.
// A non-nil failure is only returned when no complete response was received.
func (c *Client) do(ctx context.Context, method string, target string, payload any) (response, *domain.Failure) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, domain.NewValidationFailure("cannot encode request to %s: %v", target, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return response{}, domain.NewValidationFailure("invalid request to %s: %v", target, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{latency: time.Since(start)}, c.classify(ctx, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		return response{statusCode: resp.StatusCode, latency: latency}, c.classify(ctx, target, err)
	}

	c.logger.Debug("Upstream request completed", "method", method, "url", target, "status", resp.StatusCode, "latency", latency)

	return response{
		statusCode: resp.StatusCode,
		body:       data,
		latency:    latency,
	}, nil
}

// classify converts a transport error into a TimeoutFailure or UnreachableFailure.
func (c *Client) classify(ctx context.Context, target string, err error) *domain.Failure {
	c.logger.Debug("Upstream request failed", "url", target, "error", err)

	var netErr net.Error
	if stdErrors.Is(err, context.DeadlineExceeded) ||
		stdErrors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(stdErrors.As(err, &netErr) && netErr.Timeout()) {
		return &domain.Failure{
			Kind:    domain.FailureTimeout,
			Message: fmt.Sprintf("request to %s timed out after %s, check that the server is running", target, c.timeout),
		}
	}

	return &domain.Failure{
		Kind:    domain.FailureUnreachable,
		Message: fmt.Sprintf("cannot connect to %s, check the URL and port: %v", target, rootCause(err)),
	}
}

// statusFailure returns a ServerFailure for a non-2xx response, or nil for a 2xx response.
func statusFailure(resp response) *domain.Failure {
	if resp.statusCode >= 200 && resp.statusCode < 300 {
		return nil
	}

	text := strings.TrimSpace(string(resp.body))
	msg := fmt.Sprintf("server returned HTTP %d", resp.statusCode)
	if text != "" {
		msg = fmt.Sprintf("%s: %s", msg, text)
	}

	return &domain.Failure{
		Kind:       domain.FailureServer,
		Message:    msg,
		StatusCode: resp.statusCode,
		Body:       text,
	}
}

// parseFailure returns a ServerFailure describing a body that is not valid JSON.
func parseFailure(resp response, err error) *domain.Failure {
	return &domain.Failure{
		Kind:       domain.FailureServer,
		Message:    fmt.Sprintf("invalid JSON response from server: %v", err),
		StatusCode: resp.statusCode,
		Body:       string(resp.body),
	}
}

// rootCause unwraps to the innermost error, which carries the useful text (e.g. 'connection refused').
func rootCause(err error) error {
	for {
		next := stdErrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
