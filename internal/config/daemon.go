package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// DaemonConfig represents daemon-specific configuration that can be stored in .mcpconnect.toml.
// Values set here act as defaults for the daemon command and are overridden by explicitly set flags.
type DaemonConfig struct {
	// Address to bind the API server (e.g., "0.0.0.0:8090")
	// Maps to CLI flag --addr
	Addr *string `json:"addr,omitempty" toml:"addr,omitempty" yaml:"addr,omitempty"`

	// Timeout applied to each outbound probe and tool call.
	// Maps to CLI flag --timeout
	Timeout *Duration `json:"timeout,omitempty" toml:"timeout,omitempty" yaml:"timeout,omitempty"`

	// ToolCallPath is the path appended to a server's base URL when relaying tool calls.
	// Maps to CLI flag --tool-call-path
	ToolCallPath *string `json:"toolCallPath,omitempty" toml:"tool_call_path,omitempty" yaml:"tool_call_path,omitempty"`

	// RefreshInterval for periodic status refresh of enabled servers, zero disables it.
	// Maps to CLI flag --refresh-interval
	RefreshInterval *Duration `json:"refreshInterval,omitempty" toml:"refresh_interval,omitempty" yaml:"refresh_interval,omitempty"`

	// Nested CORS configuration for cross-origin requests
	CORS *CORSConfigSection `json:"cors,omitempty" toml:"cors,omitempty" yaml:"cors,omitempty"`
}

// CORSConfigSection contains Cross-Origin Resource Sharing (CORS) configuration.
type CORSConfigSection struct {
	// Enable CORS support
	// Maps to CLI flag --cors-enable
	Enable *bool `json:"enable,omitempty" toml:"enable,omitempty" yaml:"enable,omitempty"`

	// Allowed origins for CORS requests
	// Maps to CLI flag --cors-origins
	Origins []string `json:"allowOrigins,omitempty" toml:"allow_origins,omitempty" yaml:"allow_origins,omitempty"`
}

// Duration is a custom time.Duration type that provides improved marshaling.
type Duration time.Duration

// DaemonSection returns a copy of the daemon configuration, or a zero value when the section is absent.
func (c *Config) DaemonSection() DaemonConfig {
	if c.Daemon == nil {
		return DaemonConfig{}
	}

	out := *c.Daemon
	if c.Daemon.CORS != nil {
		cors := *c.Daemon.CORS
		cors.Origins = append([]string(nil), c.Daemon.CORS.Origins...)
		out.CORS = &cors
	}

	return out
}

// Validate implements Validator for DaemonConfig.
func (d *DaemonConfig) Validate() error {
	if d == nil {
		return fmt.Errorf("no daemon configuration found")
	}

	var validationErrors []error

	if d.Addr != nil {
		if *d.Addr == "" {
			validationErrors = append(validationErrors, fmt.Errorf("API address cannot be empty"))
		} else if !isValidAddr(*d.Addr) {
			validationErrors = append(
				validationErrors,
				fmt.Errorf("API address \"%s\" appears to be invalid (expected format: host:port)", *d.Addr),
			)
		}
	}

	if d.Timeout != nil && *d.Timeout <= 0 {
		validationErrors = append(validationErrors, NewErrInvalidValue("timeout", d.Timeout.String()))
	}

	if d.RefreshInterval != nil && *d.RefreshInterval < 0 {
		validationErrors = append(validationErrors, NewErrInvalidValue("refresh_interval", d.RefreshInterval.String()))
	}

	if d.ToolCallPath != nil && !strings.HasPrefix(*d.ToolCallPath, "/") {
		validationErrors = append(validationErrors, NewErrInvalidValue("tool_call_path", *d.ToolCallPath))
	}

	if d.CORS != nil {
		if err := d.CORS.Validate(); err != nil {
			validationErrors = append(validationErrors, fmt.Errorf("CORS configuration error: %w", err))
		}
	}

	return errors.Join(validationErrors...)
}

// Validate implements Validator for CORSConfigSection.
func (c *CORSConfigSection) Validate() error {
	var validationErrors []error

	for _, origin := range c.Origins {
		// See: https://developer.mozilla.org/en-US/docs/Web/HTTP/Reference/Headers/Access-Control-Allow-Origin#sect
		if origin == "*" {
			continue
		}

		if origin == "" {
			validationErrors = append(validationErrors, fmt.Errorf("CORS origin cannot be empty"))
			continue
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			validationErrors = append(validationErrors, fmt.Errorf("invalid origin address: %s", origin))
		}
	}

	if c.Enable != nil && *c.Enable && len(c.Origins) == 0 {
		validationErrors = append(validationErrors, fmt.Errorf("CORS is enabled but no origins are allowed"))
	}

	return errors.Join(validationErrors...)
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d *Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String returns a human-readable string representation of the duration.
func (d *Duration) String() string {
	if d == nil {
		return ""
	}

	duration := time.Duration(*d)
	if duration == 0 {
		return "0s"
	}

	units := []struct {
		unit   time.Duration
		suffix string
	}{
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
		{time.Millisecond, "ms"},
	}

	for _, u := range units {
		if duration%u.unit == 0 {
			return fmt.Sprintf("%d%s", duration/u.unit, u.suffix)
		}
	}

	return duration.String()
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// isValidAddr reports whether addr is a bindable host:port pair.
func isValidAddr(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	if port == "" {
		return false
	}

	if strings.ContainsAny(host, " \t\n\r") {
		return false
	}

	return len(host) <= 253
}
