package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/daemon"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
	"github.com/mozilla-ai/mcpconnect/internal/registry"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

const (
	flagDev                = "dev"
	flagAddr               = "addr"
	flagCORSEnable         = "cors-enable"
	flagCORSOrigin         = "cors-allow-origin"
	flagCORSHeader         = "cors-allow-header"
	flagCORSMaxAge         = "cors-max-age"
	flagTimeout            = "timeout"
	flagTimeoutAPIShutdown = "timeout-api-shutdown"
	flagToolCallPath       = "tool-call-path"
	flagRefreshInterval    = "refresh-interval"
	flagRefreshConcurrency = "refresh-concurrency"

	defaultAddr    = "0.0.0.0:8090"
	defaultDevAddr = "localhost:8090"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	dev           bool
	config        daemonFlagConfig
	cfgLoader     config.Loader
	clientOptions []upstream.Option
}

// daemonFlagConfig holds the raw flag values, durations are parsed during validation.
type daemonFlagConfig struct {
	api      apiFlagConfig
	cors     corsFlagConfig
	upstream upstreamFlagConfig
	refresh  refreshFlagConfig
}

type apiFlagConfig struct {
	addr            string
	shutdownTimeout string
}

type corsFlagConfig struct {
	enable  bool
	origins []string
	headers []string
	maxAge  string
}

type upstreamFlagConfig struct {
	timeout      string
	toolCallPath string
}

type refreshFlagConfig struct {
	interval    string
	concurrency int
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		clientOptions: opts.ClientOptions,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--dev] [--addr]",
		Short: "Launches an `mcpconnect` daemon instance",
		Long: "Launches an `mcpconnect` daemon instance, which tracks the status of registered tool servers\n" +
			"and proxies probes and tool calls via HTTP API.\n\n" +
			"Values in the [daemon] section of the config file are used unless the matching flag is set.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	fs := cobraCommand.Flags()

	fs.BoolVar(&c.dev, flagDev, false, "Run the daemon in development-focused mode")
	fs.StringVar(
		&c.config.api.addr,
		flagAddr,
		defaultAddr,
		"Address for the daemon to bind (not applicable in --dev mode)",
	)
	fs.StringVar(
		&c.config.api.shutdownTimeout,
		flagTimeoutAPIShutdown,
		daemon.DefaultAPIShutdownTimeout().String(),
		"Maximum time to wait for the API server to shut down",
	)

	fs.BoolVar(&c.config.cors.enable, flagCORSEnable, false, "Enable CORS support for the API")
	fs.StringArrayVar(&c.config.cors.origins, flagCORSOrigin, nil, "Allowed CORS origin, can be repeated")
	fs.StringArrayVar(&c.config.cors.headers, flagCORSHeader, nil, "Allowed CORS request header, can be repeated")
	fs.StringVar(
		&c.config.cors.maxAge,
		flagCORSMaxAge,
		daemon.DefaultCORSMaxAge().String(),
		"How long browsers may cache CORS preflight responses",
	)

	fs.StringVar(
		&c.config.upstream.timeout,
		flagTimeout,
		upstream.DefaultTimeout().String(),
		"Maximum time for a single probe or tool call",
	)
	fs.StringVar(
		&c.config.upstream.toolCallPath,
		flagToolCallPath,
		upstream.DefaultToolCallPath(),
		"Path appended to a server's base URL when relaying tool calls",
	)

	fs.StringVar(
		&c.config.refresh.interval,
		flagRefreshInterval,
		daemon.DefaultRefreshInterval().String(),
		"How often enabled servers are re-probed (0 disables periodic refresh)",
	)
	fs.IntVar(
		&c.config.refresh.concurrency,
		flagRefreshConcurrency,
		registry.DefaultRefreshConcurrency(),
		"Maximum number of servers probed at once (0 is unlimited)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive(flagDev, flagAddr)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	c.applyConfigDefaults(cobraCmd, cfg.DaemonSection())

	if err := c.validateFlags(cobraCmd); err != nil {
		return err
	}

	addr := strings.TrimSpace(c.config.api.addr)
	if c.dev {
		logger.Info("Development-focused mode", "addr", addr, "override", defaultDevAddr)
		addr = defaultDevAddr
	}

	clientOpts, err := c.buildClientOptions()
	if err != nil {
		return err
	}

	client, err := c.UpstreamClient(clientOpts...)
	if err != nil {
		return fmt.Errorf("error configuring upstream client: %w", err)
	}

	apiOpts, err := c.buildAPIOptions()
	if err != nil {
		return err
	}

	daemonOpts, err := c.buildDaemonOptions(apiOpts)
	if err != nil {
		return err
	}

	deps, err := daemon.NewDependencies(logger, addr, client, cfg, config.ToRecords(cfg.ListServers()))
	if err != nil {
		return fmt.Errorf("error configuring mcpconnect daemon dependencies: %w", err)
	}

	d, err := daemon.NewDaemon(deps, daemonOpts...)
	if err != nil {
		return fmt.Errorf("failed to create mcpconnect daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	if c.dev {
		logger.Info("Launching daemon in dev mode", "addr", addr)
		banner := fmt.Sprintf("mcpconnect daemon running in 'dev' mode.\n\n"+
			"  Local API:\thttp://%s/api/v1\n"+
			"  Proxy API:\thttp://%s/api/mcp\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Config file:\t%s\n",
			addr, addr, addr, flags.ConfigFile)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += c.formatConfigInfo(addr)
		banner += "\nPress Ctrl+C to stop.\n\n"
		_, _ = fmt.Fprint(cobraCmd.OutOrStdout(), banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("daemon exited with error", "error", err)
		return err // Propagate daemon failure.
	}
}

// applyConfigDefaults copies values from the config file's daemon section for every flag the user did not set.
func (c *DaemonCmd) applyConfigDefaults(cobraCmd *cobra.Command, section config.DaemonConfig) {
	changed := func(name string) bool {
		return cobraCmd.Flags().Changed(name)
	}

	if section.Addr != nil && !changed(flagAddr) {
		c.config.api.addr = *section.Addr
	}
	if section.Timeout != nil && !changed(flagTimeout) {
		c.config.upstream.timeout = section.Timeout.String()
	}
	if section.ToolCallPath != nil && !changed(flagToolCallPath) {
		c.config.upstream.toolCallPath = *section.ToolCallPath
	}
	if section.RefreshInterval != nil && !changed(flagRefreshInterval) {
		c.config.refresh.interval = section.RefreshInterval.String()
	}
	if section.CORS != nil {
		if section.CORS.Enable != nil && !changed(flagCORSEnable) {
			c.config.cors.enable = *section.CORS.Enable
		}
		if len(section.CORS.Origins) > 0 && !changed(flagCORSOrigin) {
			c.config.cors.origins = slices.Clone(section.CORS.Origins)
		}
	}
}

// validateFlags checks the combined flag and config values before anything is started.
func (c *DaemonCmd) validateFlags(_ *cobra.Command) error {
	durations := []struct {
		flag  string
		value string
	}{
		{flagCORSMaxAge, c.config.cors.maxAge},
		{flagTimeoutAPIShutdown, c.config.api.shutdownTimeout},
		{flagTimeout, c.config.upstream.timeout},
		{flagRefreshInterval, c.config.refresh.interval},
	}

	for _, d := range durations {
		if d.value == "" {
			continue
		}
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid --%s duration: %w", d.flag, err)
		}
	}

	if c.config.cors.enable && len(c.config.cors.origins) == 0 {
		return fmt.Errorf("--%s requires at least one --%s", flagCORSEnable, flagCORSOrigin)
	}

	if c.config.refresh.concurrency < 0 {
		return fmt.Errorf("--%s cannot be negative", flagRefreshConcurrency)
	}

	return nil
}

// buildClientOptions converts the upstream flags into client options, after any options supplied by the caller.
func (c *DaemonCmd) buildClientOptions() ([]upstream.Option, error) {
	opts := slices.Clone(c.clientOptions)

	if c.config.upstream.timeout != "" {
		timeout, err := time.ParseDuration(c.config.upstream.timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", flagTimeout, err)
		}
		opts = append(opts, upstream.WithTimeout(timeout))
	}

	if c.config.upstream.toolCallPath != "" {
		opts = append(opts, upstream.WithToolCallPath(c.config.upstream.toolCallPath))
	}

	return opts, nil
}

// buildAPIOptions converts the API and CORS flags into API server options.
func (c *DaemonCmd) buildAPIOptions() ([]daemon.APIOption, error) {
	var opts []daemon.APIOption

	if c.config.cors.enable {
		opts = append(opts,
			daemon.WithCORSEnabled(true),
			daemon.WithCORSAllowOrigins(c.config.cors.origins),
		)

		if len(c.config.cors.headers) > 0 {
			opts = append(opts, daemon.WithCORSAllowHeaders(c.config.cors.headers))
		}

		if c.config.cors.maxAge != "" {
			maxAge, err := time.ParseDuration(c.config.cors.maxAge)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", flagCORSMaxAge, err)
			}
			opts = append(opts, daemon.WithCORSMaxAge(maxAge))
		}
	}

	if c.config.api.shutdownTimeout != "" {
		timeout, err := time.ParseDuration(c.config.api.shutdownTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", flagTimeoutAPIShutdown, err)
		}
		opts = append(opts, daemon.WithShutdownTimeout(timeout))
	}

	return opts, nil
}

// buildDaemonOptions converts the refresh flags into daemon options, including the API options.
func (c *DaemonCmd) buildDaemonOptions(apiOpts []daemon.APIOption) ([]daemon.Option, error) {
	opts := []daemon.Option{
		daemon.WithAPIOptions(apiOpts...),
		daemon.WithRegistryOptions(registry.WithRefreshConcurrency(c.config.refresh.concurrency)),
	}

	if c.config.refresh.interval != "" {
		interval, err := time.ParseDuration(c.config.refresh.interval)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", flagRefreshInterval, err)
		}
		opts = append(opts, daemon.WithRefreshInterval(interval))
	}

	return opts, nil
}

// formatConfigInfo describes the effective settings that differ from the defaults.
func (c *DaemonCmd) formatConfigInfo(addr string) string {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "  API address:\t%s\n", addr)

	if c.config.cors.enable {
		_, _ = fmt.Fprintf(&b, "  CORS enabled:\t%s\n", strings.Join(c.config.cors.origins, ", "))
	}
	if t := c.config.upstream.timeout; t != "" && t != upstream.DefaultTimeout().String() {
		_, _ = fmt.Fprintf(&b, "  Upstream timeout:\t%s\n", t)
	}
	if p := c.config.upstream.toolCallPath; p != "" && p != upstream.DefaultToolCallPath() {
		_, _ = fmt.Fprintf(&b, "  Tool call path:\t%s\n", p)
	}
	if i := c.config.refresh.interval; i != "" && i != daemon.DefaultRefreshInterval().String() {
		_, _ = fmt.Fprintf(&b, "  Refresh interval:\t%s\n", i)
	}

	return b.String()
}
