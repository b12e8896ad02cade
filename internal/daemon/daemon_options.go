package daemon

import (
	"fmt"
	"time"

	"github.com/mozilla-ai/mcpconnect/internal/registry"
)

// Options contains optional configuration for the daemon.
// NewOptions should be used to create instances of Options.
type Options struct {
	// APIOptions contains functional options for the API server.
	APIOptions []APIOption

	// RegistryOptions contains functional options for the server registry.
	RegistryOptions []registry.Option

	// RefreshInterval specifies how often enabled servers are re-probed, zero disables periodic refresh.
	RefreshInterval time.Duration
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
// Starts with default values, then applies options in order with later options overriding earlier ones.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

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

// WithAPIOptions configures API server options.
// Replaces all previous API configuration including CORS settings.
func WithAPIOptions(apiOpts ...APIOption) Option {
	return func(o *Options) error {
		o.APIOptions = apiOpts
		return nil
	}
}

// WithRegistryOptions configures server registry options.
func WithRegistryOptions(regOpts ...registry.Option) Option {
	return func(o *Options) error {
		o.RegistryOptions = regOpts
		return nil
	}
}

// WithRefreshInterval configures how often enabled servers are re-probed.
// Zero disables periodic refresh, leaving only the startup refresh and explicit refresh requests.
func WithRefreshInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval < 0 {
			return fmt.Errorf("refresh interval cannot be negative, got %v", interval)
		}
		o.RefreshInterval = interval
		return nil
	}
}

// DefaultRefreshInterval is the default interval for periodic refresh, periodic refresh is off by default.
func DefaultRefreshInterval() time.Duration {
	return 0
}

func defaultOptions() Options {
	return Options{
		RefreshInterval: DefaultRefreshInterval(),
	}
}
