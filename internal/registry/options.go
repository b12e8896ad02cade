package registry

import (
	"fmt"
	"time"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// StatusListener is notified with a copy of a record after each status transition.
// Notifications for different records arrive in no particular order.
type StatusListener func(record domain.ServerRecord)

// Options contains optional configuration for the Registry.
// NewOptions should be used to create instances of Options.
type Options struct {
	// RefreshConcurrency caps how many probes RefreshAll runs at once, zero means no limit.
	RefreshConcurrency int

	// Listeners are notified of status transitions.
	Listeners []StatusListener

	// Clock supplies the time recorded as a record's LastChecked.
	Clock func() time.Time
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		RefreshConcurrency: DefaultRefreshConcurrency(),
		Clock:              func() time.Time { return time.Now().UTC() },
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

// WithRefreshConcurrency limits how many servers are probed at the same time during RefreshAll.
func WithRefreshConcurrency(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return fmt.Errorf("refresh concurrency cannot be negative, got %d", n)
		}
		o.RefreshConcurrency = n
		return nil
	}
}

// WithStatusListener adds a listener for status transitions.
func WithStatusListener(fn StatusListener) Option {
	return func(o *Options) error {
		if fn == nil {
			return fmt.Errorf("status listener cannot be nil")
		}
		o.Listeners = append(o.Listeners, fn)
		return nil
	}
}

// WithClock overrides the clock used to stamp LastChecked.
func WithClock(fn func() time.Time) Option {
	return func(o *Options) error {
		if fn == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.Clock = fn
		return nil
	}
}

// DefaultRefreshConcurrency is the default probe concurrency for RefreshAll (unlimited).
func DefaultRefreshConcurrency() int {
	return 0
}
