package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mozilla-ai/mcpconnect/internal/perms"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// Init creates the base skeleton configuration file for the mcpconnect project.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `servers = []`

	if err := os.WriteFile(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func (d *DefaultLoader) Load(path string) (Modifier, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found, run: 'mcpconnect init'", ErrConfigLoadFailed)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg *Config
	_, err = toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%w: config file is empty (%s)", ErrConfigLoadFailed, path)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate existing config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return cfg, nil
}

// AddServer attempts to persist a new tool server to the configuration file (.mcpconnect.toml).
func (c *Config) AddServer(entry ServerEntry) error {
	normalized, err := upstream.ValidateBaseURL(entry.BaseURL)
	if err != nil {
		return err
	}
	entry.BaseURL = normalized

	servers := append(slices.Clone(c.Servers), entry)
	if err := validateServers(servers); err != nil {
		return err
	}
	c.Servers = servers

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// RemoveServer removes a server entry by ID from the configuration file (.mcpconnect.toml).
func (c *Config) RemoveServer(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("server ID cannot be empty")
	}

	filtered := slices.DeleteFunc(slices.Clone(c.Servers), func(s ServerEntry) bool {
		return s.ID == id
	})
	if len(filtered) == len(c.Servers) {
		return fmt.Errorf("%w: '%s'", ErrServerNotFound, id)
	}

	c.Servers = filtered

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// SetServerEnabled toggles whether the server with the given ID takes part in refresh cycles and tool calls.
func (c *Config) SetServerEnabled(id string, enabled bool) error {
	idx := slices.IndexFunc(c.Servers, func(s ServerEntry) bool { return s.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: '%s'", ErrServerNotFound, id)
	}

	if c.Servers[idx].Enabled == enabled {
		return nil
	}

	c.Servers[idx].Enabled = enabled

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ReplaceServers swaps the full set of server entries and saves the configuration.
// The existing entries are kept when the replacement fails validation.
func (c *Config) ReplaceServers(entries []ServerEntry) error {
	servers := slices.Clone(entries)
	if err := validateServers(servers); err != nil {
		return err
	}

	c.Servers = servers

	if err := c.saveConfig(); err != nil {
		return fmt.Errorf("failed to save updated config: %w", err)
	}

	return nil
}

// ListServers returns a copy of the currently configured server entries.
// This provides read-only access to the internal configuration without exposing direct mutation of the underlying slice.
func (c *Config) ListServers() []ServerEntry {
	return slices.Clone(c.Servers)
}

// SaveConfig saves the current configuration to the config file.
func (c *Config) SaveConfig() error {
	return c.saveConfig()
}

func (c *Config) saveConfig() error {
	if c.configFilePath == "" {
		return fmt.Errorf("config file path not present")
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.configFilePath, data, perms.RegularFile)
}

// validate orchestrates validation of configuration structure.
func (c *Config) validate() error {
	if err := validateServers(c.Servers); err != nil {
		return err
	}

	if c.Daemon != nil {
		if err := c.Daemon.Validate(); err != nil {
			return fmt.Errorf("daemon configuration error: %w", err)
		}
	}

	return nil
}

// validateServers ensures every entry has an ID, a name and a usable base URL, and that IDs are distinct.
// Names and base URLs are allowed to repeat.
func validateServers(servers []ServerEntry) error {
	seen := map[string]struct{}{}

	for _, entry := range servers {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return fmt.Errorf("server entry has empty ID")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate server ID '%s'", id)
		}
		seen[id] = struct{}{}

		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("server entry '%s' has empty name", id)
		}
		if _, err := upstream.ValidateBaseURL(entry.BaseURL); err != nil {
			return fmt.Errorf("server entry '%s': %w", id, err)
		}
	}

	return nil
}
