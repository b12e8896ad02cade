package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/printer"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

const (
	flagArg  = "arg"
	flagJSON = "json"
)

// CallCmd should be used to represent the 'call' command.
type CallCmd struct {
	*cmd.BaseCmd
	Format        cmd.OutputFormat
	Args          []string
	JSON          string
	Timeout       time.Duration
	clientOptions []upstream.Option
}

// NewCallCmd creates a newly configured (Cobra) command.
func NewCallCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CallCmd{
		BaseCmd:       baseCmd,
		Format:        cmd.FormatText,
		clientOptions: opts.ClientOptions,
	}

	cobraCommand := &cobra.Command{
		Use:   "call <base-url> <tool-name>",
		Short: "Calls a tool on a tool server",
		Long: "Calls a tool on a tool server and prints the normalized result.\n\n" +
			"Arguments are given either as repeated --arg key=value pairs (values are parsed as JSON when possible)\n" +
			"or as a single JSON object with --json.",
		Args: cobra.ExactArgs(2),
		RunE: c.run,
	}

	cobraCommand.Flags().StringArrayVar(
		&c.Args,
		flagArg,
		nil,
		"Tool argument as key=value, can be repeated",
	)

	cobraCommand.Flags().StringVar(
		&c.JSON,
		flagJSON,
		"",
		"Tool arguments as a JSON object",
	)

	cobraCommand.Flags().DurationVar(
		&c.Timeout,
		"timeout",
		upstream.DefaultTimeout(),
		"Maximum time to wait for the tool call to complete",
	)

	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", cmd.AllowedOutputFormats().String()),
	)

	cobraCommand.MarkFlagsMutuallyExclusive(flagArg, flagJSON)

	return cobraCommand, nil
}

// run is configured (via NewCallCmd) to be called by the Cobra framework when the command is executed.
// It may return an error (or nil, when there is no error).
func (c *CallCmd) run(cobraCmd *cobra.Command, args []string) error {
	handler, err := cmd.NewOutputHandler[printer.ToolCallView](
		c.Format,
		cobraCmd.OutOrStdout(),
		&printer.ToolCallPrinter{},
	)
	if err != nil {
		return err
	}

	arguments, err := c.arguments()
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

	result := client.Invoke(ctx, args[0], strings.TrimSpace(args[1]), arguments)

	if err := handler.HandleResult(printer.NewToolCallView(result)); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("tool call failed")
	}

	return nil
}

// arguments builds the tool arguments from either --json or the --arg pairs.
func (c *CallCmd) arguments() (map[string]any, error) {
	if strings.TrimSpace(c.JSON) != "" {
		var out map[string]any
		if err := json.Unmarshal([]byte(c.JSON), &out); err != nil {
			return nil, fmt.Errorf("invalid --%s arguments, expected a JSON object: %w", flagJSON, err)
		}
		return out, nil
	}

	return parseArgPairs(c.Args)
}

// parseArgPairs converts key=value pairs into tool arguments.
// Values that parse as JSON keep their type, anything else is passed as a string.
func parseArgPairs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s '%s', expected key=value", flagArg, pair)
		}

		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		out[key] = parsed
	}

	return out, nil
}
