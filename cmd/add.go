package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
	"github.com/mozilla-ai/mcpconnect/internal/printer"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// AddCmd should be used to represent the 'add' command.
type AddCmd struct {
	*cmd.BaseCmd
	Disabled      bool
	Probe         bool
	cfgLoader     config.Loader
	clientOptions []upstream.Option
}

// NewAddCmd creates a newly configured (Cobra) command.
func NewAddCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &AddCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		clientOptions: opts.ClientOptions,
	}

	cobraCommand := &cobra.Command{
		Use:   "add <name> <base-url>",
		Short: "Registers a tool server by its base URL",
		Long: "Registers a tool server by its base URL, assigning it a new ID.\n\n" +
			"The server starts disconnected, use --probe to check it straight away.",
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Disabled,
		"disabled",
		false,
		"Register the server without enabling it",
	)

	cobraCommand.Flags().BoolVar(
		&c.Probe,
		"probe",
		false,
		"Probe the server once it has been registered",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("disabled", "probe")

	return cobraCommand, nil
}

// run is configured (via NewAddCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *AddCmd) run(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("server name is required and cannot be empty")
	}

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	reg, err := c.CreateRegistry(cfg.ListServers(), c.clientOptions...)
	if err != nil {
		return err
	}

	rec, err := reg.Add(name, args[1], !c.Disabled)
	if err != nil {
		return err
	}

	if err := cfg.AddServer(config.EntryFromRecord(rec)); err != nil {
		return fmt.Errorf("error adding server '%s': %w", name, err)
	}

	logger.Debug("Server added", "id", rec.ID, "name", rec.Name, "url", rec.BaseURL)

	if _, err := fmt.Fprintf(
		cmd.OutOrStdout(),
		"✓ Added server '%s' (%s)\n  🆔 %s\n", rec.Name, rec.BaseURL, rec.ID,
	); err != nil {
		return err
	}

	if !c.Probe {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	probed, err := reg.RefreshOne(ctx, rec.ID)
	if err != nil {
		return err
	}

	return printer.NewServerPrinter().Item(cmd.OutOrStdout(), printer.NewServerListItem(probed))
}
