package daemon

import (
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

var _ contracts.ServerRegistry = (*persistingRegistry)(nil)

// persistingRegistry writes the registry contents to the store after each successful change.
// A failed write is logged; the in-memory change is kept.
type persistingRegistry struct {
	contracts.ServerRegistry
	store  ServerStore
	logger hclog.Logger

	// mu serializes writes to the store.
	mu sync.Mutex
}

func (p *persistingRegistry) Add(name string, baseURL string, enabled bool) (domain.ServerRecord, error) {
	rec, err := p.ServerRegistry.Add(name, baseURL, enabled)
	if err == nil {
		p.persist()
	}
	return rec, err
}

func (p *persistingRegistry) Remove(id string) error {
	err := p.ServerRegistry.Remove(id)
	if err == nil {
		p.persist()
	}
	return err
}

func (p *persistingRegistry) SetEnabled(id string, enabled bool) (domain.ServerRecord, error) {
	rec, err := p.ServerRegistry.SetEnabled(id, enabled)
	if err == nil {
		p.persist()
	}
	return rec, err
}

func (p *persistingRegistry) Rename(id string, name string) (domain.ServerRecord, error) {
	rec, err := p.ServerRegistry.Rename(id, name)
	if err == nil {
		p.persist()
	}
	return rec, err
}

func (p *persistingRegistry) persist() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.ReplaceServers(config.FromRecords(p.List())); err != nil {
		p.logger.Error("Failed to persist servers", "error", err)
	}
}
