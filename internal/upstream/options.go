package upstream

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Options contains optional configuration for the upstream Client.
// NewOptions should be used to create instances of Options.
type Options struct {
	// HTTPClient performs the outbound requests. Its own Timeout is not relied upon,
	// every request is bounded by Timeout through its context.
	HTTPClient *http.Client

	// Timeout bounds each probe or invocation, including reading the response body.
	Timeout time.Duration

	// ToolCallPath is appended to a server's base URL to form the tool invocation endpoint.
	ToolCallPath string

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		HTTPClient:   &http.Client{},
		Timeout:      DefaultTimeout(),
		ToolCallPath: DefaultToolCallPath(),
		MaxBodyBytes: DefaultMaxBodyBytes(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithHTTPClient configures the HTTP client used for outbound requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.HTTPClient = c
		return nil
	}
}

// WithTimeout configures how long a single probe or invocation may take.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.Timeout = timeout
		return nil
	}
}

// WithToolCallPath configures the path of the tool invocation endpoint on every server.
func WithToolCallPath(path string) Option {
	return func(o *Options) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return fmt.Errorf("tool call path cannot be empty")
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		o.ToolCallPath = path
		return nil
	}
}

// WithMaxBodyBytes configures the maximum number of response bytes that will be read.
func WithMaxBodyBytes(n int64) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("max body bytes must be positive, got %d", n)
		}
		o.MaxBodyBytes = n
		return nil
	}
}

// DefaultTimeout is the default time allowed for a probe or invocation.
func DefaultTimeout() time.Duration {
	return 10 * time.Second
}

// DefaultToolCallPath is the default tool invocation endpoint path.
func DefaultToolCallPath() string {
	return "/mcp/tools/call"
}

// DefaultMaxBodyBytes is the default cap on response body size (10 MiB).
func DefaultMaxBodyBytes() int64 {
	return 10 << 20
}
