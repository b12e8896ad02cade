package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/contracts"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
	"github.com/mozilla-ai/mcpconnect/internal/errors"
	"github.com/mozilla-ai/mcpconnect/internal/schema"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// MissingBaseURLMessage is returned when a proxy request does not say which tool server to contact.
const MissingBaseURLMessage = "Missing baseUrl parameter"

// ProbeRequest represents the incoming API request to proxy an introspection call.
type ProbeRequest struct {
	BaseURL string `doc:"Base URL of the tool server" example:"http://localhost:9999" query:"baseUrl"`
}

// ProbeResponse represents the wrapped API response holding the tool server's JSON unchanged.
type ProbeResponse struct {
	Body any
}

// ToolCallRequest represents the incoming API request to relay a tool call.
type ToolCallRequest struct {
	Body ToolCallRequestBody
}

// ToolCallRequestBody identifies the target server either directly by base URL or by registered server ID.
type ToolCallRequestBody struct {
	BaseURL   string         `doc:"Base URL of the tool server"           json:"baseUrl,omitempty"   required:"false"`
	ServerID  string         `doc:"ID of a registered tool server"        json:"serverId,omitempty"  required:"false"`
	ToolName  string         `doc:"Name of the tool to call"              json:"toolName"            required:"false"`
	Arguments map[string]any `doc:"Arguments passed through to the tool" json:"arguments,omitempty" required:"false"`
}

// ToolCallResponse represents the wrapped API response for a relayed tool call.
// Status follows the failure classification when the call did not succeed.
type ToolCallResponse struct {
	Status int
	Body   ToolCallResult
}

// RegisterProxyRoutes sets up the endpoints that relay browser requests to tool servers.
func RegisterProxyRoutes(
	routerAPI huma.API,
	logger hclog.Logger,
	client contracts.UpstreamClient,
	servers contracts.ServerRegistry,
	apiPathPrefix string,
) {
	proxyAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Proxy"}

	huma.Register(
		proxyAPI,
		huma.Operation{
			OperationID: "proxyInfo",
			Method:      http.MethodGet,
			Path:        "/info",
			Summary:     "Get tool server info",
			Tags:        tags,
		},
		func(ctx context.Context, input *ProbeRequest) (*ProbeResponse, error) {
			return handleProbe(ctx, logger, input.BaseURL, client.ProbeInfo)
		},
	)

	huma.Register(
		proxyAPI,
		huma.Operation{
			OperationID: "proxyConfigSchema",
			Method:      http.MethodGet,
			Path:        "/config-schema",
			Summary:     "Get tool server configuration schema",
			Tags:        tags,
		},
		func(ctx context.Context, input *ProbeRequest) (*ProbeResponse, error) {
			return handleProbe(ctx, logger, input.BaseURL, client.ProbeConfigSchema)
		},
	)

	huma.Register(
		proxyAPI,
		huma.Operation{
			OperationID: "proxyToolCall",
			Method:      http.MethodPost,
			Path:        "/tools/call",
			Summary:     "Call a tool on a tool server",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ToolCallRequest) (*ToolCallResponse, error) {
			return handleToolCall(ctx, logger, client, servers, input.Body)
		},
	)
}

// handleProbe relays a single introspection call and returns the server's JSON unchanged.
func handleProbe(
	ctx context.Context,
	logger hclog.Logger,
	baseURL string,
	probe func(context.Context, string) upstream.Outcome,
) (*ProbeResponse, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, NewProxyError(http.StatusBadRequest, MissingBaseURLMessage, "")
	}

	outcome := probe(ctx, baseURL)
	if !outcome.OK() {
		return nil, MapError(logger, outcome.Failure)
	}

	body, err := decodeJSON(outcome.Payload)
	if err != nil {
		return nil, MapError(logger, err)
	}

	return &ProbeResponse{Body: body}, nil
}

// handleToolCall resolves the target server, checks the arguments when the tool declared a schema,
// and relays the call.
func handleToolCall(
	ctx context.Context,
	logger hclog.Logger,
	client contracts.UpstreamClient,
	servers contracts.ServerRegistry,
	req ToolCallRequestBody,
) (*ToolCallResponse, error) {
	baseURL := upstream.NormalizeBaseURL(req.BaseURL)
	toolName := strings.TrimSpace(req.ToolName)

	if id := strings.TrimSpace(req.ServerID); id != "" {
		rec, err := servers.Get(id)
		if err != nil {
			return nil, MapError(logger, err)
		}
		if !rec.Enabled {
			return nil, MapError(logger, fmt.Errorf("%w: %s", errors.ErrServerDisabled, id))
		}
		switch baseURL {
		case "":
			baseURL = rec.BaseURL
		case rec.BaseURL:
		default:
			failure := domain.NewValidationFailure("baseUrl %q does not match server %s (%s)", baseURL, id, rec.BaseURL)
			return toolCallResponse(domain.FailedToolCall(failure, ""))
		}

		if tool, ok := rec.Tool(toolName); ok {
			if err := schema.ValidateArguments(tool.InputSchema, req.Arguments); err != nil {
				failure := &domain.Failure{Kind: domain.FailureValidation, Message: err.Error()}
				return toolCallResponse(domain.FailedToolCall(failure, ""))
			}
		}
	}

	if strings.TrimSpace(baseURL) == "" {
		return toolCallResponse(domain.FailedToolCall(domain.NewValidationFailure(MissingBaseURLMessage), ""))
	}

	return toolCallResponse(client.Invoke(ctx, baseURL, toolName, req.Arguments))
}

// toolCallResponse wraps a result, using 200 for success or for a failure reported by a server that answered 2xx.
func toolCallResponse(result domain.ToolCallResult) (*ToolCallResponse, error) {
	body, err := DomainToolCallResult(result).ToAPIType()
	if err != nil {
		body = ToolCallResult{Success: false, Error: err.Error(), RawOutput: result.RawOutput}
		return &ToolCallResponse{Status: http.StatusInternalServerError, Body: body}, nil
	}

	status := http.StatusOK
	if f := result.Failure; !result.Success && f != nil {
		if f.Kind != domain.FailureServer || f.StatusCode < http.StatusOK || f.StatusCode >= http.StatusMultipleChoices {
			status = FailureStatus(f)
		}
	}

	return &ToolCallResponse{Status: status, Body: body}, nil
}
