package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
	"github.com/mozilla-ai/mcpconnect/internal/perms"
	"github.com/mozilla-ai/mcpconnect/internal/registry"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the current logger for the command, creating it from flags and environment on first use.
// Logs are discarded unless a log path has been configured.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}

	// Get log level from flags first, then environment, then default
	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(strings.TrimSpace(os.Getenv(flags.EnvVarLogLevel)))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}
	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level: %q", logLevel)
	}

	// Get log path from flags first, then environment
	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	var output io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.SecureFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "mcpconnect",
		Level:  level,
		Output: output,
	})

	return c.logger, nil
}

// UpstreamClient creates the client used to probe and call tool servers.
func (c *BaseCmd) UpstreamClient(opts ...upstream.Option) (*upstream.Client, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	return upstream.NewClient(logger, opts...)
}

// CreateRegistry builds a server registry hydrated from the persisted entries,
// probing through a client created with the supplied options.
func (c *BaseCmd) CreateRegistry(entries []config.ServerEntry, opts ...upstream.Option) (*registry.Registry, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	client, err := upstream.NewClient(logger, opts...)
	if err != nil {
		return nil, err
	}

	reg, err := registry.New(logger, client)
	if err != nil {
		return nil, err
	}

	if err := reg.Restore(config.ToRecords(entries)...); err != nil {
		return nil, fmt.Errorf("failed to load servers from config: %w", err)
	}

	return reg, nil
}
