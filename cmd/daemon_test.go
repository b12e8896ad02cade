package cmd

import (
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmdopts "github.com/mozilla-ai/mcpconnect/internal/cmd/options"
	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/daemon"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// mockConfigLoader implements config.Loader for testing.
type mockConfigLoader struct {
	cfg config.Modifier
	err error
}

func (m *mockConfigLoader) Load(_ string) (config.Modifier, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cfg, nil
}

func ptr[T any](v T) *T {
	return &v
}

func newTestDaemonCmd(t *testing.T) (*cobra.Command, error) {
	t.Helper()

	return NewDaemonCmd(newBaseCmd(), cmdopts.WithConfigLoader(&mockConfigLoader{}))
}

func TestDaemon_NewDaemonCmd_Success(t *testing.T) {
	t.Parallel()

	cobraCmd, err := newTestDaemonCmd(t)
	require.NoError(t, err)
	require.NotNil(t, cobraCmd)

	assert.Equal(t, "daemon", cobraCmd.Name())
	assert.Contains(t, cobraCmd.Short, "daemon instance")
	assert.Contains(t, cobraCmd.Long, "tool servers")
}

func TestDaemon_NewDaemonCmd_NilConfigLoader(t *testing.T) {
	t.Parallel()

	cobraCmd, err := NewDaemonCmd(newBaseCmd(), cmdopts.WithConfigLoader(nil))
	require.EqualError(t, err, "config loader cannot be nil")
	require.Nil(t, cobraCmd)
}

func TestDaemon_DaemonCmd_Flags(t *testing.T) {
	t.Parallel()

	cobraCmd, err := newTestDaemonCmd(t)
	require.NoError(t, err)

	fs := cobraCmd.Flags()

	for _, name := range []string{
		flagDev,
		flagAddr,
		flagCORSEnable,
		flagCORSOrigin,
		flagCORSHeader,
		flagCORSMaxAge,
		flagTimeout,
		flagTimeoutAPIShutdown,
		flagToolCallPath,
		flagRefreshInterval,
		flagRefreshConcurrency,
	} {
		require.NotNil(t, fs.Lookup(name), name)
	}

	assert.Equal(t, "false", fs.Lookup(flagDev).DefValue)
	assert.Equal(t, "0.0.0.0:8090", fs.Lookup(flagAddr).DefValue)
	assert.Equal(t, "10s", fs.Lookup(flagTimeout).DefValue)
	assert.Equal(t, "/mcp/tools/call", fs.Lookup(flagToolCallPath).DefValue)
	assert.Equal(t, "0s", fs.Lookup(flagRefreshInterval).DefValue)
}

func TestDaemon_DaemonCmd_FlagMutualExclusion(t *testing.T) {
	t.Parallel()

	cobraCmd, err := newTestDaemonCmd(t)
	require.NoError(t, err)

	_, err = execute(t, cobraCmd, "--dev", "--addr=localhost:9000")
	require.Error(t, err)
	require.Contains(t, err.Error(), "if any flags in the group [dev addr] are set none of the others can be")
}

func TestDaemon_DaemonCmd_ConfigLoadError(t *testing.T) {
	t.Parallel()

	cobraCmd, err := NewDaemonCmd(
		newBaseCmd(),
		cmdopts.WithConfigLoader(&mockConfigLoader{err: fmt.Errorf("boom")}),
	)
	require.NoError(t, err)

	_, err = execute(t, cobraCmd)
	require.EqualError(t, err, "boom")
}

func TestDaemon_DaemonCmd_ValidateFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      daemonFlagConfig
		expectError string
	}{
		{
			name: "valid configuration",
			config: daemonFlagConfig{
				cors: corsFlagConfig{
					enable:  true,
					origins: []string{"http://localhost:3000"},
					maxAge:  "10m",
				},
				api:      apiFlagConfig{shutdownTimeout: "5s"},
				upstream: upstreamFlagConfig{timeout: "3s"},
				refresh:  refreshFlagConfig{interval: "30s", concurrency: 4},
			},
		},
		{
			name: "invalid CORS max age duration",
			config: daemonFlagConfig{
				cors: corsFlagConfig{maxAge: "invalid-duration"},
			},
			expectError: "invalid --cors-max-age duration: time: invalid duration \"invalid-duration\"",
		},
		{
			name: "invalid API shutdown timeout",
			config: daemonFlagConfig{
				api: apiFlagConfig{shutdownTimeout: "not-a-duration"},
			},
			expectError: "invalid --timeout-api-shutdown duration: time: invalid duration \"not-a-duration\"",
		},
		{
			name: "invalid upstream timeout",
			config: daemonFlagConfig{
				upstream: upstreamFlagConfig{timeout: "bad-format"},
			},
			expectError: "invalid --timeout duration: time: invalid duration \"bad-format\"",
		},
		{
			name: "invalid refresh interval",
			config: daemonFlagConfig{
				refresh: refreshFlagConfig{interval: "not-valid"},
			},
			expectError: "invalid --refresh-interval duration: time: invalid duration \"not-valid\"",
		},
		{
			name: "CORS enabled without origins",
			config: daemonFlagConfig{
				cors: corsFlagConfig{enable: true},
			},
			expectError: "--cors-enable requires at least one --cors-allow-origin",
		},
		{
			name: "negative refresh concurrency",
			config: daemonFlagConfig{
				refresh: refreshFlagConfig{concurrency: -1},
			},
			expectError: "--refresh-concurrency cannot be negative",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cobraCmd, err := newTestDaemonCmd(t)
			require.NoError(t, err)

			daemonCmd := &DaemonCmd{config: tc.config}
			err = daemonCmd.validateFlags(cobraCmd)

			if tc.expectError != "" {
				require.EqualError(t, err, tc.expectError)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDaemon_DaemonCmd_BuildAPIOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		config         daemonFlagConfig
		expectError    string
		validateResult func(t *testing.T, opts daemon.APIOptions)
	}{
		{
			name:   "CORS disabled",
			config: daemonFlagConfig{cors: corsFlagConfig{enable: false, maxAge: "10m"}},
			validateResult: func(t *testing.T, opts daemon.APIOptions) {
				assert.False(t, opts.CORS.Enabled)
				assert.Equal(t, daemon.DefaultCORSMaxAge(), opts.CORS.MaxAge)
			},
		},
		{
			name: "CORS enabled with origins and headers",
			config: daemonFlagConfig{
				cors: corsFlagConfig{
					enable:  true,
					origins: []string{"http://localhost:3000", "https://example.com"},
					headers: []string{"Content-Type", "X-Request-ID"},
					maxAge:  "10m",
				},
			},
			validateResult: func(t *testing.T, opts daemon.APIOptions) {
				assert.True(t, opts.CORS.Enabled)
				assert.ElementsMatch(t, []string{"http://localhost:3000", "https://example.com"}, opts.CORS.AllowOrigins)
				assert.Equal(t, []string{"Content-Type", "X-Request-ID"}, opts.CORS.AllowedHeaders)
				assert.Equal(t, 10*time.Minute, opts.CORS.MaxAge)
			},
		},
		{
			name:   "API shutdown timeout",
			config: daemonFlagConfig{api: apiFlagConfig{shutdownTimeout: "30s"}},
			validateResult: func(t *testing.T, opts daemon.APIOptions) {
				assert.Equal(t, 30*time.Second, opts.ShutdownTimeout)
			},
		},
		{
			name: "invalid CORS max age",
			config: daemonFlagConfig{
				cors: corsFlagConfig{enable: true, origins: []string{"http://localhost:3000"}, maxAge: "invalid"},
			},
			expectError: "invalid cors-max-age: time: invalid duration \"invalid\"",
		},
		{
			name:        "invalid API shutdown timeout",
			config:      daemonFlagConfig{api: apiFlagConfig{shutdownTimeout: "not-valid"}},
			expectError: "invalid timeout-api-shutdown: time: invalid duration \"not-valid\"",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			daemonCmd := &DaemonCmd{config: tc.config}
			opts, err := daemonCmd.buildAPIOptions()

			if tc.expectError != "" {
				require.EqualError(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)

			apiOpts, err := daemon.NewAPIOptions(opts...)
			require.NoError(t, err)
			tc.validateResult(t, apiOpts)
		})
	}
}

func TestDaemon_DaemonCmd_BuildDaemonOptions(t *testing.T) {
	t.Parallel()

	daemonCmd := &DaemonCmd{
		config: daemonFlagConfig{
			refresh: refreshFlagConfig{interval: "20s", concurrency: 2},
		},
	}

	apiOpts, err := daemonCmd.buildAPIOptions()
	require.NoError(t, err)

	opt, err := daemonCmd.buildDaemonOptions(apiOpts)
	require.NoError(t, err)

	opts, err := daemon.NewOptions(opt...)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, opts.RefreshInterval)
	assert.Len(t, opts.RegistryOptions, 1)

	daemonCmd.config.refresh.interval = "soon"
	_, err = daemonCmd.buildDaemonOptions(apiOpts)
	require.EqualError(t, err, "invalid refresh-interval: time: invalid duration \"soon\"")
}

func TestDaemon_DaemonCmd_BuildClientOptions(t *testing.T) {
	t.Parallel()

	daemonCmd := &DaemonCmd{
		config: daemonFlagConfig{
			upstream: upstreamFlagConfig{timeout: "2s", toolCallPath: "/tools/invoke"},
		},
		clientOptions: []upstream.Option{upstream.WithMaxBodyBytes(1024)},
	}

	opt, err := daemonCmd.buildClientOptions()
	require.NoError(t, err)
	require.Len(t, opt, 3)

	opts, err := upstream.NewOptions(opt...)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, "/tools/invoke", opts.ToolCallPath)
	assert.Equal(t, int64(1024), opts.MaxBodyBytes)

	client, err := upstream.NewClient(hclog.NewNullLogger(), opt...)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, client.Timeout())
}

func TestDaemon_DaemonCmd_ApplyConfigDefaults(t *testing.T) {
	t.Parallel()

	section := config.DaemonConfig{
		Addr:            ptr("127.0.0.1:7000"),
		Timeout:         ptr(config.Duration(4 * time.Second)),
		ToolCallPath:    ptr("/call"),
		RefreshInterval: ptr(config.Duration(time.Minute)),
		CORS: &config.CORSConfigSection{
			Enable:  ptr(true),
			Origins: []string{"http://localhost:3000"},
		},
	}

	t.Run("config fills unset flags", func(t *testing.T) {
		t.Parallel()

		cobraCmd, err := newTestDaemonCmd(t)
		require.NoError(t, err)
		require.NoError(t, cobraCmd.ParseFlags(nil))

		daemonCmd := &DaemonCmd{config: daemonFlagConfig{api: apiFlagConfig{addr: defaultAddr}}}
		daemonCmd.applyConfigDefaults(cobraCmd, section)

		assert.Equal(t, "127.0.0.1:7000", daemonCmd.config.api.addr)
		assert.Equal(t, "4s", daemonCmd.config.upstream.timeout)
		assert.Equal(t, "/call", daemonCmd.config.upstream.toolCallPath)
		assert.Equal(t, "1m", daemonCmd.config.refresh.interval)
		assert.True(t, daemonCmd.config.cors.enable)
		assert.Equal(t, []string{"http://localhost:3000"}, daemonCmd.config.cors.origins)
	})

	t.Run("flags win over config", func(t *testing.T) {
		t.Parallel()

		cobraCmd, err := newTestDaemonCmd(t)
		require.NoError(t, err)
		require.NoError(t, cobraCmd.ParseFlags([]string{"--addr", "0.0.0.0:9000", "--timeout", "1s"}))

		daemonCmd := &DaemonCmd{
			config: daemonFlagConfig{
				api:      apiFlagConfig{addr: "0.0.0.0:9000"},
				upstream: upstreamFlagConfig{timeout: "1s"},
			},
		}
		daemonCmd.applyConfigDefaults(cobraCmd, section)

		assert.Equal(t, "0.0.0.0:9000", daemonCmd.config.api.addr)
		assert.Equal(t, "1s", daemonCmd.config.upstream.timeout)
		assert.Equal(t, "/call", daemonCmd.config.upstream.toolCallPath)
	})

	t.Run("empty section changes nothing", func(t *testing.T) {
		t.Parallel()

		cobraCmd, err := newTestDaemonCmd(t)
		require.NoError(t, err)

		daemonCmd := &DaemonCmd{config: daemonFlagConfig{api: apiFlagConfig{addr: defaultAddr}}}
		daemonCmd.applyConfigDefaults(cobraCmd, config.DaemonConfig{})

		assert.Equal(t, daemonFlagConfig{api: apiFlagConfig{addr: defaultAddr}}, daemonCmd.config)
	})
}

func TestDaemon_DaemonCmd_FormatConfigInfo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		config         daemonFlagConfig
		expectedInInfo []string
		notInInfo      []string
	}{
		{
			name: "defaults",
			config: daemonFlagConfig{
				upstream: upstreamFlagConfig{timeout: "10s", toolCallPath: "/mcp/tools/call"},
				refresh:  refreshFlagConfig{interval: "0s"},
			},
			expectedInInfo: []string{"API address", "localhost:8090"},
			notInInfo:      []string{"CORS enabled", "Upstream timeout", "Tool call path", "Refresh interval"},
		},
		{
			name: "CORS enabled",
			config: daemonFlagConfig{
				cors: corsFlagConfig{
					enable:  true,
					origins: []string{"http://localhost:3000", "https://example.com"},
				},
			},
			expectedInInfo: []string{"CORS enabled", "http://localhost:3000, https://example.com"},
		},
		{
			name: "custom upstream and refresh",
			config: daemonFlagConfig{
				upstream: upstreamFlagConfig{timeout: "2s", toolCallPath: "/call"},
				refresh:  refreshFlagConfig{interval: "15s"},
			},
			expectedInInfo: []string{
				"Upstream timeout:\t2s",
				"Tool call path:\t/call",
				"Refresh interval:\t15s",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			daemonCmd := &DaemonCmd{config: tc.config}
			info := daemonCmd.formatConfigInfo("localhost:8090")

			for _, expected := range tc.expectedInInfo {
				assert.Contains(t, info, expected)
			}
			for _, notExpected := range tc.notInInfo {
				assert.NotContains(t, info, notExpected)
			}
		})
	}
}
