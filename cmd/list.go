package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
	"github.com/mozilla-ai/mcpconnect/internal/printer"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// ListCmd should be used to represent the 'list' command.
type ListCmd struct {
	*cmd.BaseCmd
	Format        cmd.OutputFormat
	Refresh       bool
	cfgLoader     config.Loader
	clientOptions []upstream.Option
}

// NewListCmd creates a newly configured (Cobra) command.
func NewListCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ListCmd{
		BaseCmd:       baseCmd,
		Format:        cmd.FormatText,
		cfgLoader:     opts.ConfigLoader,
		clientOptions: opts.ClientOptions,
	}

	cobraCommand := &cobra.Command{
		Use:   "list",
		Short: "Lists registered tool servers",
		Long: "Lists registered tool servers with their last known status.\n\n" +
			"Status is not persisted, use --refresh to probe every enabled server first.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", cmd.AllowedOutputFormats().String()),
	)

	cobraCommand.Flags().BoolVar(
		&c.Refresh,
		"refresh",
		false,
		"Probe all enabled servers before listing them",
	)

	return cobraCommand, nil
}

// run is configured (via NewListCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *ListCmd) run(cobraCmd *cobra.Command, _ []string) error {
	handler, err := cmd.NewOutputHandler[printer.ServerListItem](
		c.Format,
		cobraCmd.OutOrStdout(),
		printer.NewServerPrinter(),
	)
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return handler.HandleError(err)
	}

	reg, err := c.CreateRegistry(cfg.ListServers(), c.clientOptions...)
	if err != nil {
		return handler.HandleError(err)
	}

	if c.Refresh {
		ctx := cobraCmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		reg.RefreshAll(ctx)
	}

	records := reg.List()
	items := make([]printer.ServerListItem, 0, len(records))
	for _, rec := range records {
		items = append(items, printer.NewServerListItem(rec))
	}

	return handler.HandleResults(items...)
}
