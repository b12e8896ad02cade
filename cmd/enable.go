package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
)

// SetEnabledCmd represents both the 'enable' and 'disable' commands.
type SetEnabledCmd struct {
	*cmd.BaseCmd
	enabled   bool
	cfgLoader config.Loader
}

// NewEnableCmd creates the command that includes a server in refreshes and tool calls.
func NewEnableCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	return newSetEnabledCmd(
		baseCmd,
		true,
		&cobra.Command{
			Use:   "enable <server-id>",
			Short: "Enables a registered tool server",
			Long:  "Enables a registered tool server so it is refreshed and can receive tool calls",
		},
		opt...,
	)
}

// NewDisableCmd creates the command that excludes a server from refreshes and tool calls.
func NewDisableCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	return newSetEnabledCmd(
		baseCmd,
		false,
		&cobra.Command{
			Use:   "disable <server-id>",
			Short: "Disables a registered tool server",
			Long:  "Disables a registered tool server, it keeps its registration but is no longer refreshed or called",
		},
		opt...,
	)
}

func newSetEnabledCmd(
	baseCmd *cmd.BaseCmd,
	enabled bool,
	cobraCommand *cobra.Command,
	opt ...cmdopts.CmdOption,
) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &SetEnabledCmd{
		BaseCmd:   baseCmd,
		enabled:   enabled,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand.RunE = c.run

	return cobraCommand, nil
}

func (c *SetEnabledCmd) run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("server ID is required and cannot be empty")
	}

	logger, err := c.Logger()
	if err != nil {
		return err
	}

	id := strings.TrimSpace(args[0])

	cfg, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	if err := cfg.SetServerEnabled(id, c.enabled); err != nil {
		return err
	}

	state := "Disabled"
	if c.enabled {
		state = "Enabled"
	}

	logger.Debug("Server updated", "id", id, "enabled", c.enabled)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "✓ %s server '%s'\n", state, id); err != nil {
		return err
	}

	return nil
}
