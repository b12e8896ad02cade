package config

import (
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

var (
	_ Provider = (*DefaultLoader)(nil)
	_ Modifier = (*Config)(nil)
)

type Loader interface {
	Load(path string) (Modifier, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type Modifier interface {
	AddServer(entry ServerEntry) error
	RemoveServer(id string) error
	SetServerEnabled(id string, enabled bool) error
	ReplaceServers(entries []ServerEntry) error
	ListServers() []ServerEntry
	DaemonSection() DaemonConfig
}

type DefaultLoader struct{}

// Config represents the .mcpconnect.toml file structure.
type Config struct {
	Servers        []ServerEntry `toml:"servers"`
	Daemon         *DaemonConfig `toml:"daemon,omitempty"`
	configFilePath string        `toml:"-"`
}

// ServerEntry represents the persisted part of a registered tool server.
// Only these fields round-trip; status, tools and error details are recomputed on startup.
type ServerEntry struct {
	// ID is the stable identifier assigned when the server was first registered.
	ID string `json:"id" toml:"id" yaml:"id"`

	// Name is the display label chosen by the user.
	// e.g. 'Weather'
	Name string `json:"name" toml:"name" yaml:"name"`

	// BaseURL is the address of the tool server without a trailing slash.
	// e.g. 'http://localhost:9999'
	BaseURL string `json:"baseUrl" toml:"base_url" yaml:"base_url"`

	// Enabled controls whether the server is refreshed and can be called.
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`
}

// ToRecord converts the entry into a registry record in its initial (disconnected) state.
func (e ServerEntry) ToRecord() domain.ServerRecord {
	return domain.ServerRecord{
		ID:      e.ID,
		Name:    e.Name,
		BaseURL: e.BaseURL,
		Status:  domain.StatusDisconnected,
		Enabled: e.Enabled,
	}
}

// EntryFromRecord extracts the persisted fields of a registry record.
func EntryFromRecord(r domain.ServerRecord) ServerEntry {
	return ServerEntry{
		ID:      r.ID,
		Name:    r.Name,
		BaseURL: r.BaseURL,
		Enabled: r.Enabled,
	}
}

// ToRecords converts entries into registry records.
func ToRecords(entries []ServerEntry) []domain.ServerRecord {
	out := make([]domain.ServerRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ToRecord())
	}
	return out
}

// FromRecords extracts the persisted fields of registry records.
func FromRecords(records []domain.ServerRecord) []ServerEntry {
	out := make([]ServerEntry, 0, len(records))
	for _, r := range records {
		out = append(out, EntryFromRecord(r))
	}
	return out
}
