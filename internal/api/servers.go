package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body []Server
}

// ServerResponse represents the wrapped API response for a single server.
type ServerResponse struct {
	Body Server
}

// ServerRequest represents the incoming API request addressing a single server.
type ServerRequest struct {
	ID string `doc:"ID of the server" example:"6f1c9a52-5f0e-4d55-9b8a-3d2f1c7e9a10" path:"id"`
}

// CreateServerRequest represents the incoming API request to register a server.
type CreateServerRequest struct {
	Body struct {
		Name    string `doc:"Display name"                              example:"Weather"               json:"name"`
		BaseURL string `doc:"Base URL of the tool server"               example:"http://localhost:9999" json:"baseUrl"`
		Enabled *bool  `doc:"Whether the server is enabled, default true" json:"isEnabled,omitempty" required:"false"`
	}
}

// RenameServerRequest represents the incoming API request to change a server's display name.
type RenameServerRequest struct {
	ID   string `doc:"ID of the server" path:"id"`
	Body struct {
		Name string `doc:"New display name" example:"Weather" json:"name"`
	}
}

// RegisterServerRoutes sets up the endpoints for managing registered tool servers.
func RegisterServerRoutes(
	routerAPI huma.API,
	logger hclog.Logger,
	servers contracts.ServerRegistry,
	apiPathPrefix string,
) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	// Add route at the root of the group (no path specified).
	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all servers",
			Tags:        tags,
		},
		func(_ context.Context, _ *struct{}) (*ServersResponse, error) {
			return serversResponse(logger, servers.List())
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID:   "createServer",
			Method:        http.MethodPost,
			Summary:       "Register a server",
			Tags:          tags,
			DefaultStatus: http.StatusCreated,
		},
		func(_ context.Context, input *CreateServerRequest) (*ServerResponse, error) {
			enabled := true
			if input.Body.Enabled != nil {
				enabled = *input.Body.Enabled
			}
			rec, err := servers.Add(input.Body.Name, input.Body.BaseURL, enabled)
			return serverResponse(logger, rec, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "refreshServers",
			Method:      http.MethodPost,
			Path:        "/refresh",
			Summary:     "Refresh all enabled servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			servers.RefreshAll(ctx)
			return serversResponse(logger, servers.List())
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "getServer",
			Method:      http.MethodGet,
			Path:        "/{id}",
			Summary:     "Get a server",
			Tags:        tags,
		},
		func(_ context.Context, input *ServerRequest) (*ServerResponse, error) {
			rec, err := servers.Get(input.ID)
			return serverResponse(logger, rec, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "renameServer",
			Method:      http.MethodPatch,
			Path:        "/{id}",
			Summary:     "Rename a server",
			Tags:        tags,
		},
		func(_ context.Context, input *RenameServerRequest) (*ServerResponse, error) {
			rec, err := servers.Rename(input.ID, input.Body.Name)
			return serverResponse(logger, rec, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID:   "deleteServer",
			Method:        http.MethodDelete,
			Path:          "/{id}",
			Summary:       "Remove a server",
			Tags:          tags,
			DefaultStatus: http.StatusNoContent,
		},
		func(_ context.Context, input *ServerRequest) (*struct{}, error) {
			if err := servers.Remove(input.ID); err != nil {
				return nil, MapError(logger, err)
			}
			return nil, nil
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "enableServer",
			Method:      http.MethodPost,
			Path:        "/{id}/enable",
			Summary:     "Enable a server",
			Tags:        tags,
		},
		func(_ context.Context, input *ServerRequest) (*ServerResponse, error) {
			rec, err := servers.SetEnabled(input.ID, true)
			return serverResponse(logger, rec, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "disableServer",
			Method:      http.MethodPost,
			Path:        "/{id}/disable",
			Summary:     "Disable a server",
			Tags:        tags,
		},
		func(_ context.Context, input *ServerRequest) (*ServerResponse, error) {
			rec, err := servers.SetEnabled(input.ID, false)
			return serverResponse(logger, rec, err)
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "refreshServer",
			Method:      http.MethodPost,
			Path:        "/{id}/refresh",
			Summary:     "Refresh a server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerRequest) (*ServerResponse, error) {
			rec, err := servers.RefreshOne(ctx, input.ID)
			return serverResponse(logger, rec, err)
		},
	)
}

func serverResponse(logger hclog.Logger, rec domain.ServerRecord, err error) (*ServerResponse, error) {
	if err != nil {
		return nil, MapError(logger, err)
	}

	data, err := DomainServer(rec).ToAPIType()
	if err != nil {
		return nil, MapError(logger, err)
	}

	return &ServerResponse{Body: data}, nil
}

func serversResponse(logger hclog.Logger, records []domain.ServerRecord) (*ServersResponse, error) {
	out := make([]Server, 0, len(records))
	for _, rec := range records {
		data, err := DomainServer(rec).ToAPIType()
		if err != nil {
			return nil, MapError(logger, err)
		}
		out = append(out, data)
	}

	return &ServersResponse{Body: out}, nil
}
