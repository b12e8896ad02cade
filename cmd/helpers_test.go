package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/cmd"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/flags"
)

const infoPayload = `{
  "name": "weather",
  "version": "1.2.0",
  "description": "Weather tools",
  "tools": [
    {"name": "forecast", "description": "Daily forecast", "inputSchema": {"type": "object"}},
    {"name": "alerts"}
  ]
}`

// newBaseCmd returns a BaseCmd that discards logs.
func newBaseCmd() *cmd.BaseCmd {
	baseCmd := &cmd.BaseCmd{}
	baseCmd.SetLogger(hclog.NewNullLogger())
	return baseCmd
}

// useConfigFile writes content to a temporary config file and points flags.ConfigFile at it.
func useConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".mcpconnect.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	previous := flags.ConfigFile
	t.Cleanup(func() { flags.ConfigFile = previous })
	flags.ConfigFile = path

	return path
}

// readConfig decodes the config file at path.
func readConfig(t *testing.T, path string) config.Config {
	t.Helper()

	var parsed config.Config
	_, err := toml.DecodeFile(path, &parsed)
	require.NoError(t, err)

	return parsed
}

// execute runs the command with args and returns its combined output.
func execute(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(io.Discard)
	c.SetArgs(args)

	err := c.Execute()

	return out.String(), err
}

// toolServer starts a tool server exposing the info, config schema and tool call endpoints.
func toolServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /mcp/info", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, infoPayload)
	})
	mux.HandleFunc("GET /mcp-config-schema", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"type":"object","properties":{"apiKey":{"type":"string"}}}`)
	})
	mux.HandleFunc("POST /mcp/tools/call", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ToolName  string         `json:"toolName"`
			Arguments map[string]any `json:"arguments"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.ToolName != "forecast" {
			http.Error(w, "unknown tool", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"city": req.Arguments["city"], "days": req.Arguments["days"]},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

// closedURL returns a base URL nothing is listening on.
func closedURL(t *testing.T) string {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	return url
}

// setMissingConfig points flags.ConfigFile at a file that does not exist.
func setMissingConfig(t *testing.T) {
	t.Helper()

	previous := flags.ConfigFile
	t.Cleanup(func() { flags.ConfigFile = previous })
	flags.ConfigFile = filepath.Join(t.TempDir(), "missing.toml")
}
