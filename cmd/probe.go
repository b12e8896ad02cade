package cmd

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/printer"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// ProbeCmd should be used to represent the 'probe' command.
type ProbeCmd struct {
	*cmd.BaseCmd
	Format        cmd.OutputFormat
	Schema        bool
	Timeout       time.Duration
	clientOptions []upstream.Option
}

// NewProbeCmd creates a newly configured (Cobra) command.
func NewProbeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ProbeCmd{
		BaseCmd:       baseCmd,
		Format:        cmd.FormatText,
		clientOptions: opts.ClientOptions,
	}

	cobraCommand := &cobra.Command{
		Use:   "probe <base-url>",
		Short: "Checks a tool server without registering it",
		Long: fmt.Sprintf(
			"Requests a tool server's info endpoint (%s), or its configuration schema (%s) with --schema,\n"+
				"and reports the classified outcome.",
			upstream.InfoPath,
			upstream.ConfigSchemaPath,
		),
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Schema,
		"schema",
		false,
		"Probe the configuration schema endpoint instead of the info endpoint",
	)

	cobraCommand.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		upstream.DefaultTimeout(),
		"Maximum time to wait for the server to respond",
	)

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", cmd.AllowedOutputFormats().String()),
	)

	return cobraCommand, nil
}

// run is configured (via NewProbeCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *ProbeCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[printer.ProbeResult](
		c.Format,
		cobraCmd.OutOrStdout(),
		&printer.ProbeResultPrinter{},
	)
	if err != nil {
		return err
	}

	client, err := c.UpstreamClient(append(slices.Clone(c.clientOptions), upstream.WithTimeout(c.Timeout))...)
	if err != nil {
		return handler.HandleError(err)
	}

	ctx := cobraCmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	baseURL := upstream.NormalizeBaseURL(args[0])

	var result printer.ProbeResult
	if c.Schema {
		result = printer.NewProbeResult(baseURL+upstream.ConfigSchemaPath, client.ProbeConfigSchema(ctx, baseURL))
	} else {
		outcome := client.ProbeInfo(ctx, baseURL)
		result = printer.NewProbeResult(baseURL+upstream.InfoPath, outcome)
		if outcome.OK() {
			if info, err := upstream.ParseServerInfo(outcome.Payload); err == nil {
				tools := printer.NewToolsListResult(info)
				result.Tools = &tools
			}
		}
	}

	if err := handler.HandleResult(result); err != nil {
		return err
	}

	if !result.OK {
		return fmt.Errorf("probe of %s failed", result.Endpoint)
	}

	return nil
}
