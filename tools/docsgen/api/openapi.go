//go:build docsgen_api
// +build docsgen_api

package main

import (
	"fmt"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/mcpconnect/internal/api"
	"github.com/mozilla-ai/mcpconnect/internal/perms"
	"github.com/mozilla-ai/mcpconnect/internal/registry"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

// main generates the OpenAPI specification for the mcpconnect API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "mcpconnect.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// Create a chi router and Huma API the same way as the daemon.
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)
	router := humachi.New(mux, huma.DefaultConfig("mcpconnect docs", api.APIVersion))

	// Route definitions are all the document needs, an empty registry is enough.
	client, err := upstream.NewClient(logger)
	if err != nil {
		logger.Error("failed to create upstream client", "error", err)
		os.Exit(1)
	}
	reg, err := registry.New(logger, client)
	if err != nil {
		logger.Error("failed to create registry", "error", err)
		os.Exit(1)
	}

	serversPrefix, err := api.RegisterRoutes(router, logger, client, reg)
	if err != nil {
		logger.Error("failed to register API routes", "error", err)
		os.Exit(1)
	}

	logger.Info("Routes registered", "servers", serversPrefix, "proxy", api.ProxyPathPrefix)

	yamlBytes, err := router.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll("./docs/api", perms.RegularDir); err != nil {
		logger.Error("failed to create docs directory", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
