package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/perms"
)

// TestConfigFilePermissions verifies that config files keep regular permissions
// when created by init and when rewritten after a mutation.
func TestConfigFilePermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".mcpconnect.toml")

	loader := &config.DefaultLoader{}
	require.NoError(t, loader.Init(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, perms.RegularFile, info.Mode().Perm())

	cfg, err := loader.Load(path)
	require.NoError(t, err)

	err = cfg.AddServer(config.ServerEntry{
		ID:      "0b7e6f5c-3f0e-4a43-9a4e-2f5d1c7a9b10",
		Name:    "weather",
		BaseURL: "http://localhost:9999",
		Enabled: true,
	})
	require.NoError(t, err)

	info, err = os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, perms.RegularFile, info.Mode().Perm())

	reloaded, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, reloaded.ListServers(), 1)
}
