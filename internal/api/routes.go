package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// ProxyPathPrefix is where the tool server proxy endpoints are mounted.
const ProxyPathPrefix = "/api/mcp"

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the versioned API path prefix (e.g., "/api/v1") under which the server management routes are created.
func RegisterRoutes(
	router huma.API,
	logger hclog.Logger,
	client contracts.UpstreamClient,
	servers contracts.ServerRegistry,
) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return "", fmt.Errorf("logger cannot be nil")
	}
	if client == nil || reflect.ValueOf(client).IsNil() {
		return "", fmt.Errorf("upstream client cannot be nil")
	}
	if servers == nil || reflect.ValueOf(servers).IsNil() {
		return "", fmt.Errorf("server registry cannot be nil")
	}

	// Extract API version from the router's OpenAPI spec.
	apiVersionID := router.OpenAPI().Info.Version

	// Safe way to ensure /api/{version}.
	apiPathPrefix, err := url.JoinPath("/api", apiVersionID)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	RegisterProxyRoutes(router, logger, client, servers, ProxyPathPrefix)

	// Group all management routes under the /api/{version} prefix.
	versionedGroup := huma.NewGroup(router, apiPathPrefix)
	RegisterServerRoutes(versionedGroup, logger, servers, "/servers")

	return apiPathPrefix, nil
}
