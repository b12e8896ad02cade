package contracts

import (
	"context"

	"github.com/mozilla-ai/mcpconnect/internal/domain"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// Prober checks a tool server's liveness and capabilities through its info endpoint.
type Prober interface {
	// ProbeInfo requests the server's info endpoint and classifies the outcome.
	ProbeInfo(ctx context.Context, baseURL string) upstream.Outcome
}

// UpstreamClient provides every outbound call that can be made to a tool server.
type UpstreamClient interface {
	Prober

	// ProbeConfigSchema requests the server's configuration schema endpoint and classifies the outcome.
	ProbeConfigSchema(ctx context.Context, baseURL string) upstream.Outcome

	// Invoke calls a tool on the server and normalizes the response, it never returns an error.
	Invoke(ctx context.Context, baseURL string, toolName string, arguments map[string]any) domain.ToolCallResult
}

// Refresher re-probes every enabled tool server.
type Refresher interface {
	// RefreshAll probes all enabled servers concurrently and returns once every probe has settled.
	RefreshAll(ctx context.Context) []domain.ServerRecord
}

// ServerRegistry provides a way to manage registered tool servers and their derived status.
type ServerRegistry interface {
	Refresher

	// Add registers a new server and returns the created record.
	Add(name string, baseURL string, enabled bool) (domain.ServerRecord, error)

	// Remove deletes a server by ID.
	Remove(id string) error

	// SetEnabled toggles whether a server takes part in refreshes and tool calls.
	SetEnabled(id string, enabled bool) (domain.ServerRecord, error)

	// Rename updates a server's display name.
	Rename(id string, name string) (domain.ServerRecord, error)

	// Get returns a copy of the server record with the given ID.
	Get(id string) (domain.ServerRecord, error)

	// List returns copies of all server records in registration order.
	List() []domain.ServerRecord

	// RefreshOne probes a single enabled server and returns its updated record.
	RefreshOne(ctx context.Context, id string) (domain.ServerRecord, error)
}
