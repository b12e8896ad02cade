package daemon

import (
	"fmt"
	"reflect"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/config"
	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// ServerStore persists the registered servers so they survive a restart.
type ServerStore interface {
	// ReplaceServers overwrites every persisted server entry.
	ReplaceServers(entries []config.ServerEntry) error
}

// Dependencies contains required dependencies for the Daemon.
// NewDependencies should be used to create instances of Dependencies.
type Dependencies struct {
	// APIAddr specifies the network address for the APIServer to bind (e.g., "0.0.0.0:8090").
	APIAddr string

	// Logger for daemon and subcomponent (API server, registry) operations.
	Logger hclog.Logger

	// Client probes tool servers and relays tool calls.
	Client contracts.UpstreamClient

	// Servers are the persisted records used to hydrate the registry on startup.
	Servers []domain.ServerRecord

	// Store receives the registry contents after every change made through the API.
	Store ServerStore
}

// NewDependencies creates Dependencies for the daemon.
func NewDependencies(
	logger hclog.Logger,
	apiAddr string,
	client contracts.UpstreamClient,
	store ServerStore,
	servers []domain.ServerRecord,
) (Dependencies, error) {
	if servers == nil {
		servers = []domain.ServerRecord{}
	}

	deps := Dependencies{
		APIAddr: apiAddr,
		Logger:  logger,
		Client:  client,
		Servers: servers,
		Store:   store,
	}

	if err := deps.Validate(); err != nil {
		return Dependencies{}, err
	}

	return deps, nil
}

// Validate ensures all required dependencies are provided and valid.
func (d Dependencies) Validate() error {
	if d.Logger == nil || reflect.ValueOf(d.Logger).IsNil() {
		return fmt.Errorf("logger cannot be nil")
	}

	if err := validateAddr(d.APIAddr); err != nil {
		return fmt.Errorf("invalid API address '%s': %w", d.APIAddr, err)
	}

	if d.Client == nil || reflect.ValueOf(d.Client).IsNil() {
		return fmt.Errorf("upstream client cannot be nil")
	}

	if d.Store == nil || reflect.ValueOf(d.Store).IsNil() {
		return fmt.Errorf("server store cannot be nil")
	}

	return nil
}
